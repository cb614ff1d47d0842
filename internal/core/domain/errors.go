package domain

import "errors"

// ErrAlreadyExists is an error thrown when entity already exists
var ErrAlreadyExists = errors.New("already exists")

// ErrTagNotFound is an error when tag is not found
var ErrTagNotFound = errors.New("tag not found")

// ErrInvalidFileType is an error thrown when file type is invalid
var ErrInvalidFileType = errors.New("invalid file type")

// ErrFileSizeTooBig is an error thrown when file size is too big
var ErrFileSizeTooBig = errors.New("file size too big")

// ErrFileSizeTooSmall is an error thrown when file size is too small
var ErrFileSizeTooSmall = errors.New("file size too small")

// ErrEmptyBatch is an error thrown when a batch has no file
var ErrEmptyBatch = errors.New("batch contains no file")

// ErrBatchTooLarge is an error thrown when a batch has too many files
var ErrBatchTooLarge = errors.New("batch contains too many files")

// ErrMissingField is an error thrown when a required field is empty
var ErrMissingField = errors.New("missing required field")

// ErrInvalidVisibility is an error thrown when visibility is not supported
var ErrInvalidVisibility = errors.New("invalid visibility")

// ErrInvalidFolderDirective is an error thrown when folder management is not exactly one of selected or new folder
var ErrInvalidFolderDirective = errors.New("folder management must set exactly one of selectedFolderId or newFolderData")

// ErrFolderNotFound is an error thrown when folder is not found or not owned by the caller
var ErrFolderNotFound = errors.New("folder not found")

// ErrClassificationNotFound is an error thrown when classification level does not exist
var ErrClassificationNotFound = errors.New("classification level not found")

// ErrForeignStorageKey is an error thrown when a storage key was not issued to the caller's session
var ErrForeignStorageKey = errors.New("storage key not issued for this session")

// ErrStorageKeyAbandoned is an error thrown when a storage key was replaced by a retry
var ErrStorageKeyAbandoned = errors.New("storage key was abandoned by a retry")

// ErrMetadataMismatch is an error thrown when submitted file metadata differs from what was issued
var ErrMetadataMismatch = errors.New("file metadata does not match issued key")

// ErrRetryLimitExceeded is an error thrown when a file was retried too many times
var ErrRetryLimitExceeded = errors.New("retry limit exceeded")

// ErrUploadNotRetryable is an error thrown when a persisted upload is already completed
var ErrUploadNotRetryable = errors.New("upload is not retryable")

// ErrSessionNotFound is an error thrown when session is not found or expired
var ErrSessionNotFound = errors.New("upload session not found or expired")

// ErrURLExpired is an error thrown when a pre-signed url is used after its expiry
var ErrURLExpired = errors.New("pre-signed url expired")

// ErrUnauthorized is an error thrown when the bearer credential is missing or invalid
var ErrUnauthorized = errors.New("unauthorized")

// ErrFolderNameTaken is an error thrown when a folder with the same name already exists
var ErrFolderNameTaken = errors.New("folder name already taken")

// ErrStorageKeyConsumed is an error thrown when a storage key is already attached to an upload
var ErrStorageKeyConsumed = errors.New("storage key already used by another upload")

// ErrTransactionFailed is an error thrown when the resource transaction could not commit
var ErrTransactionFailed = errors.New("transaction failed")

// ErrTransient is an error thrown on a connection drop or temporary unavailability
var ErrTransient = errors.New("transient network failure")

// ErrResourceNotFound is an error thrown when resource is not found
var ErrResourceNotFound = errors.New("resource not found")

// ErrUploadNotFound is an error thrown when upload is not found
var ErrUploadNotFound = errors.New("upload not found")

// ErrObjectNotFound is an error thrown when the storage object does not exist
var ErrObjectNotFound = errors.New("object not found")

// ErrFileNotReady is an error thrown when file is not ready
var ErrFileNotReady = errors.New("file not ready")

// ErrFileUploadFailed is an error thrown when the stored object is missing
var ErrFileUploadFailed = errors.New("file upload failed")

// ErrorKind is the category of an error as seen by callers
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindAuthExpired        ErrorKind = "auth_expired"
	KindNetworkTransient   ErrorKind = "network_transient"
	KindConflict           ErrorKind = "conflict"
	KindTransactionFailure ErrorKind = "transaction_failure"
	KindNotFound           ErrorKind = "not_found"
	KindInternal           ErrorKind = "internal"
)

var kindsBySentinel = []struct {
	err  error
	kind ErrorKind
}{
	{ErrInvalidFileType, KindValidation},
	{ErrFileSizeTooBig, KindValidation},
	{ErrFileSizeTooSmall, KindValidation},
	{ErrEmptyBatch, KindValidation},
	{ErrBatchTooLarge, KindValidation},
	{ErrMissingField, KindValidation},
	{ErrInvalidVisibility, KindValidation},
	{ErrInvalidFolderDirective, KindValidation},
	{ErrFolderNotFound, KindValidation},
	{ErrClassificationNotFound, KindValidation},
	{ErrTagNotFound, KindValidation},
	{ErrForeignStorageKey, KindValidation},
	{ErrStorageKeyAbandoned, KindValidation},
	{ErrMetadataMismatch, KindValidation},
	{ErrRetryLimitExceeded, KindValidation},
	{ErrUploadNotRetryable, KindValidation},
	{ErrSessionNotFound, KindAuthExpired},
	{ErrURLExpired, KindAuthExpired},
	{ErrUnauthorized, KindAuthExpired},
	{ErrFolderNameTaken, KindConflict},
	{ErrStorageKeyConsumed, KindConflict},
	{ErrAlreadyExists, KindConflict},
	{ErrFileNotReady, KindConflict},
	{ErrFileUploadFailed, KindConflict},
	{ErrTransactionFailed, KindTransactionFailure},
	{ErrTransient, KindNetworkTransient},
	{ErrResourceNotFound, KindNotFound},
	{ErrUploadNotFound, KindNotFound},
	{ErrObjectNotFound, KindNotFound},
}

// KindedError is implemented by errors that already know their kind, such as API errors decoded by a client
type KindedError interface {
	error
	Kind() ErrorKind
}

// KindOf returns the kind of the first known sentinel wrapped by err,
// then falls back to a wrapped KindedError
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, entry := range kindsBySentinel {
		if errors.Is(err, entry.err) {
			return entry.kind
		}
	}
	var kinded KindedError
	if errors.As(err, &kinded) && kinded.Kind() != "" {
		return kinded.Kind()
	}
	return KindInternal
}

// Retryable reports whether a call failing with err may be attempted again automatically
func Retryable(err error) bool {
	return KindOf(err) == KindNetworkTransient
}

package coordinator

import "github.com/KhoaHuuDeang/MDHH-sub001/internal/core/domain"

// State names the variant of a Status
type State string

const (
	StatePending    State = "pending"
	StateRequesting State = "requesting"
	StateUploading  State = "uploading"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Status is the status of one file. It is one of Pending, Requesting, Uploading, Completed or Failed.
type Status interface {
	State() State
	isStatus()
}

// Pending waits for a url or for a new attempt
type Pending struct{}

// Requesting waits for the API to issue a url
type Requesting struct{}

// Uploading streams bytes to storage
type Uploading struct {
	Progress int
}

// Completed means storage acknowledged the object
type Completed struct{}

// Failed holds why the last attempt failed. Only Retry leaves this state.
type Failed struct {
	Kind    domain.ErrorKind
	Message string
}

func (Pending) State() State    { return StatePending }
func (Requesting) State() State { return StateRequesting }
func (Uploading) State() State  { return StateUploading }
func (Completed) State() State  { return StateCompleted }
func (Failed) State() State     { return StateFailed }

func (Pending) isStatus()    {}
func (Requesting) isStatus() {}
func (Uploading) isStatus()  {}
func (Completed) isStatus()  {}
func (Failed) isStatus()     {}

// canTransition reports whether a file may move from one status to the next
func canTransition(from, to Status) bool {
	switch f := from.(type) {
	case Pending:
		switch to.(type) {
		case Requesting, Uploading:
			return true
		}
	case Requesting:
		switch to.(type) {
		case Pending, Uploading, Failed:
			return true
		}
	case Uploading:
		switch t := to.(type) {
		case Uploading:
			return t.Progress >= f.Progress
		case Completed, Failed, Pending:
			return true
		}
	case Failed:
		_, ok := to.(Pending)
		return ok
	case Completed:
	}
	return false
}

package domain

import (
	"fmt"
	"net/url"
	"strings"
)

const objectCreatedPrefix = "s3:ObjectCreated:"

// BucketEvent is a MinIO bucket notification as published to NATS
type BucketEvent struct {
	EventName string         `json:"EventName"`
	Key       string         `json:"Key"`
	Records   []BucketRecord `json:"Records"`
}

// BucketRecord is one S3 style record of a bucket notification
type BucketRecord struct {
	EventName string `json:"eventName"`
	EventTime string `json:"eventTime"`
	S3        struct {
		Bucket struct {
			Name string `json:"name"`
		} `json:"bucket"`
		Object struct {
			Key  string `json:"key"`
			Size int64  `json:"size"`
			ETag string `json:"eTag"`
		} `json:"object"`
	} `json:"s3"`
}

// CreatedObject is an object announced as written
type CreatedObject struct {
	Key  string
	Size int64
}

// CreatedObjects returns the objects of every ObjectCreated record, keys unescaped.
// Other records are skipped.
func (e BucketEvent) CreatedObjects() ([]CreatedObject, error) {
	if len(e.Records) == 0 {
		return nil, fmt.Errorf("%w: no records in bucket event", ErrMissingField)
	}
	var objects []CreatedObject
	for _, record := range e.Records {
		if !strings.HasPrefix(record.EventName, objectCreatedPrefix) {
			continue
		}
		// keys are form encoded, a space arrives as '+'
		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil || key == "" {
			return nil, fmt.Errorf("%w: bad object key %q", ErrMissingField, record.S3.Object.Key)
		}
		objects = append(objects, CreatedObject{Key: key, Size: record.S3.Object.Size})
	}
	return objects, nil
}

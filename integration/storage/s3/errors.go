package s3

import "errors"

var (
	ErrInvalidConfig      = errors.New("invalid s3 archive configuration")
	ErrInvalidDomain      = errors.New("domain is required")
	ErrEmptyCertificate   = errors.New("certificate is empty")
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrRequestTimeout     = errors.New("request timeout")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
	ErrOperationTimeout   = errors.New("operation timeout")
	ErrOperationCanceled  = errors.New("operation canceled")
)

package core

import "errors"

// Sentinel errors shared across the job-processing core.
var (
	// ErrNotFound indicates that a job record or content object does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState indicates that a job is not claimable because it is
	// already terminal or has been retired.
	ErrInvalidState = errors.New("job is not in a claimable state")
	// ErrAlreadyClaimed indicates that another worker holds the job. This is
	// a normal concurrent-scheduling outcome, not a failure.
	ErrAlreadyClaimed = errors.New("job already claimed by another worker")
	// ErrEmptyContent indicates that the source text is empty after trimming.
	ErrEmptyContent = errors.New("source content is empty")
	// ErrUploadFailed indicates that the assembled audio could not be persisted.
	ErrUploadFailed = errors.New("audio upload failed")
	// ErrUnknownProvider indicates an unrecognized synthesis provider.
	ErrUnknownProvider = errors.New("unknown synthesis provider")
	// ErrUnknownFormat indicates an unrecognized audio format.
	ErrUnknownFormat = errors.New("unknown audio format")
)

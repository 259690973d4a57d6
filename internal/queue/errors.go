package queue

// notFoundError signals an unknown or already-evicted request id.
type notFoundError struct{ id string }

func (e notFoundError) Error() string { return "request not found: " + e.id }

// IsNotFound reports whether err indicates an unknown request id.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}

// notFinishedError signals a Result call before the request reached a
// terminal state.
type notFinishedError struct{ id string }

func (e notFinishedError) Error() string { return "request not finished: " + e.id }

// IsNotFinished reports whether err indicates a premature Result call.
func IsNotFinished(err error) bool {
	_, ok := err.(notFinishedError)
	return ok
}

// generationFailedError re-raises the error detail stored on a failed record.
type generationFailedError struct {
	id     string
	detail string
}

func (e generationFailedError) Error() string { return "generation failed: " + e.detail }

// IsGenerationFailed reports whether err carries a failed request's stored
// detail.
func IsGenerationFailed(err error) bool {
	_, ok := err.(generationFailedError)
	return ok
}

// FailureDetail extracts the stored error detail, if err is a generation
// failure.
func FailureDetail(err error) (string, bool) {
	if e, ok := err.(generationFailedError); ok {
		return e.detail, true
	}
	return "", false
}

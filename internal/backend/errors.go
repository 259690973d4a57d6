package backend

// unknownOperationError signals a request whose operation tag is not part of
// the closed operation set. It marks a programming or configuration defect,
// not a transient failure.
type unknownOperationError struct{ name string }

func (e unknownOperationError) Error() string { return "unknown operation: " + e.name }

// IsUnknownOperation reports whether err indicates an unrecognized operation tag.
func IsUnknownOperation(err error) bool {
	_, ok := err.(unknownOperationError)
	return ok
}

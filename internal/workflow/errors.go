package workflow

import "fmt"

type unknownReportError struct {
	id string
}

func (e unknownReportError) Error() string {
	return fmt.Sprintf("unknown report id: %s", e.id)
}

// IsUnknownReport reports whether err came from a report id missing from the
// catalog.
func IsUnknownReport(err error) bool {
	_, ok := err.(unknownReportError)
	return ok
}

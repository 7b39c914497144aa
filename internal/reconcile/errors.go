package reconcile

import "fmt"

// MalformedRecordError describes an input record that could not be used. It never
// aborts a reconciliation, the record is skipped and listed in the report.
type MalformedRecordError struct {
	Provider Provider
	// Index is the position of the record in the provider's input.
	Index  int
	Id     string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf(
		"reconcile: malformed %s record at index %d (id %q): %s",
		e.Provider, e.Index, e.Id, e.Reason,
	)
}

package persist

import "fmt"

// StorageError wraps a failure of the underlying slot backend. It is
// propagated to the caller, never swallowed.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// DeserializationError indicates stored or imported content does not
// decode as a test collection. Callers decide whether to treat it as
// "no data"; the adapter itself never guesses.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("deserializing test collection: %v", e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

package casefile

import "errors"

var (
	// ErrInvalidSelection is returned when a composite selection has the
	// wrong photo count or references photos outside the case.
	ErrInvalidSelection = errors.New("selection must contain 2 to 4 photos of the case")

	// ErrNotComposite is returned when decompose is called on a photo
	// that was not built from other photos.
	ErrNotComposite = errors.New("photo is not a composite")

	// ErrTagLimit is returned when a tag assignment exceeds the per-case
	// maximum.
	ErrTagLimit = errors.New("a case can carry at most 3 tags")
)

// StorageError reports a failed raster store operation. The editor never
// retries; the failure is surfaced with the operation that caused it and
// no case state is mutated.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "raster storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

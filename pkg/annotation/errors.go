package annotation

import "errors"

var (
	// ErrNoTable is returned when no annotation table was supplied.
	// Callers treat it as the "no annotations" state, not as a failure.
	ErrNoTable = errors.New("annotation: no table supplied")

	// ErrFileFormat is returned when a table cannot be loaded.
	ErrFileFormat = errors.New("annotation: invalid table")

	// ErrFileNotFound is returned when the table path does not exist.
	ErrFileNotFound = errors.New("annotation: table not found")

	// ErrMissingColumn is returned when the header has no Rect_id column.
	ErrMissingColumn = errors.New("annotation: missing " + IDColumn + " column")

	// ErrIndexRange is returned when a box group maps past the last frame.
	ErrIndexRange = errors.New("annotation: frame ordinal out of range")
)

package models

import "errors"

var (
	// ErrInvalidDirection means a direction other than import or export was requested.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrMalformedRecord means a stored record lacks the shape needed for aggregation.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrNotFound means the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIndexOutOfRange means an extracted document index is outside the record.
	ErrIndexOutOfRange = errors.New("extracted document index out of range")

	// ErrInvalidTransition means a navigation action is not allowed from the current view.
	ErrInvalidTransition = errors.New("invalid navigation transition")

	// ErrUnsupportedReference means a view reference cannot be opened by the blob store.
	ErrUnsupportedReference = errors.New("unsupported view reference")

	// ErrNotPDF means uploaded bytes are not a readable PDF.
	ErrNotPDF = errors.New("not a PDF document")
)

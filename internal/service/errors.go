package service

import "errors"

var (
	// ErrNotFound is returned when an update, delete or read names an id with
	// no matching row.
	ErrNotFound = errors.New("document not found")
	// ErrImageNotFound is returned when an image id has no matching row.
	ErrImageNotFound = errors.New("image not found")
	// ErrEmptyTitle is returned when a document title is empty after trimming.
	ErrEmptyTitle = errors.New("document title cannot be empty")
	// ErrEmptyFilename is returned when an image filename is empty after trimming.
	ErrEmptyFilename = errors.New("image filename cannot be empty")
	// ErrEmptyImageData is returned when an image payload has no bytes.
	ErrEmptyImageData = errors.New("image data cannot be empty")
	// ErrNoFieldsToUpdate is returned when an update names neither title nor content.
	ErrNoFieldsToUpdate = errors.New("update requires a title or content")
)

package minimap

import "errors"

// Errors returned by minimap operations.
var (
	// ErrNoDocument indicates a View without a Document.
	ErrNoDocument = errors.New("view has no document")

	// ErrEmptyDocument indicates a document with no lines. The pass is
	// skipped and nothing is published.
	ErrEmptyDocument = errors.New("document has no lines")

	// ErrClosed indicates use of a closed engine or registry.
	ErrClosed = errors.New("minimap closed")

	// ErrUnknownView indicates a ViewID the registry doesn't hold.
	ErrUnknownView = errors.New("unknown view")
)

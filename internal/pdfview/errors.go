package pdfview

import "errors"

// Sentinel errors returned by the package.
var (
	// ErrUnsupportedURL is returned for URLs whose scheme cannot be resolved.
	ErrUnsupportedURL = errors.New("pdfview: unsupported url")

	// ErrObjectNotFound is returned for blob URLs that were never created or
	// have been revoked.
	ErrObjectNotFound = errors.New("pdfview: object url not found")

	// ErrPageOutOfRange is returned when a page number is outside the document.
	ErrPageOutOfRange = errors.New("pdfview: page out of range")

	// ErrClosed is returned when rendering from a closed Document.
	ErrClosed = errors.New("pdfview: document is closed")
)

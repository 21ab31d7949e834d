// Package viewer implements the Viewer-Controller: it owns a single document
// session, uploads the selected file to the backend, drives page rendering
// through a rendering library and forwards questions about the document.
package viewer

import (
	"context"
	"image"
)

// NoAnswerPlaceholder is displayed when the backend returns no answer.
const NoAnswerPlaceholder = "No answer found."

// File is a user-selected document.
type File struct {
	Name string
	Data []byte
}

// Empty reports whether no file content is present.
func (f *File) Empty() bool {
	return f == nil || len(f.Data) == 0
}

// UploadResult is the backend's response to an upload.
type UploadResult struct {
	ContractID string
	Status     string
}

// AskResult is the backend's response to a question.
type AskResult struct {
	Answer       string
	MatchedChunk string
}

// Backend is the remote document-ingestion and question-answering service.
type Backend interface {
	Upload(ctx context.Context, name string, data []byte) (*UploadResult, error)
	// Ask sends question about the document identified by contractID. A nil
	// contractID is sent as JSON null.
	Ask(ctx context.Context, question string, contractID *string) (*AskResult, error)
}

// Viewport is a page's pixel dimensions at a given scale factor.
type Viewport struct {
	Width  int
	Height int
	Scale  float64
}

// Loader opens a document from a URL the rendering library can resolve.
type Loader interface {
	Load(ctx context.Context, url string) (Document, error)
}

// Document is a parsed document. Pages are numbered from 1.
type Document interface {
	NumPages() int
	Page(ctx context.Context, n int) (Page, error)
}

// Page is a single page of a Document.
type Page interface {
	Viewport(scale float64) Viewport
	Render(ctx context.Context, vp Viewport) (image.Image, error)
}

// Surface is the drawing target pages are rendered into.
type Surface interface {
	Resize(width, height int)
	Draw(img image.Image)
}

// ObjectURLs mints process-local URLs for in-memory file contents.
type ObjectURLs interface {
	Create(name string, data []byte) string
	Revoke(url string)
}

// NoticeLevel classifies a Notice.
type NoticeLevel string

const (
	NoticeWarning NoticeLevel = "warning"
)

// Notice is a user-facing message the presentation layer renders.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Action  string      `json:"action"`
	Message string      `json:"message"`
}

// Display is the presentation layer the controller writes to.
type Display interface {
	ShowPageCount(n int)
	ShowPageNumber(n int)
	ShowAnswer(text string)
	ShowNotice(n Notice)
}

// State is the logical session state.
type State int

const (
	StateEmpty State = iota
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

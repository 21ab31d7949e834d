package pdfview

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// BlobScheme prefixes every object URL minted by Objects.
const BlobScheme = "blob:"

const blobPrefix = BlobScheme + "contractqa/"

// Objects is a process-local registry of object URLs pointing at in-memory
// file contents. It is safe for concurrent use.
type Objects struct {
	mu    sync.RWMutex
	blobs map[string]blob
}

type blob struct {
	name string
	data []byte
}

// NewObjects creates an empty registry.
func NewObjects() *Objects {
	return &Objects{blobs: make(map[string]blob)}
}

// Create registers data and returns a new object URL for it.
func (o *Objects) Create(name string, data []byte) string {
	url := blobPrefix + uuid.NewString()
	o.mu.Lock()
	o.blobs[url] = blob{name: name, data: data}
	o.mu.Unlock()
	return url
}

// Get returns the data and file name behind url.
func (o *Objects) Get(url string) (data []byte, name string, ok bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	b, ok := o.blobs[url]
	return b.data, b.name, ok
}

// Revoke releases url. Revoking an unknown URL is a no-op.
func (o *Objects) Revoke(url string) {
	o.mu.Lock()
	delete(o.blobs, url)
	o.mu.Unlock()
}

func isBlobURL(s string) bool {
	return strings.HasPrefix(s, BlobScheme)
}

// Package pdfview adapts PDF libraries to the viewer's rendering contract.
// pdfcpu validates the document and supplies page dimensions; go-fitz
// rasterises pages.
package pdfview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sync"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"

	"github.com/ziadkadry99/contractqa/internal/logging"
	"github.com/ziadkadry99/contractqa/internal/viewer"
)

// pointsPerInch is the PDF user-space unit; a viewport at scale 1 maps one
// point to one pixel.
const pointsPerInch = 72.0

// rasterizer draws pages of an opened document. Page indices are zero based.
type rasterizer interface {
	ImageDPI(page int, dpi float64) (*image.RGBA, error)
	Close() error
}

func openFitz(data []byte) (rasterizer, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Engine loads documents from object, file and HTTP URLs.
type Engine struct {
	objects *Objects
	client  *http.Client
	logger  *zap.Logger
	open    func([]byte) (rasterizer, error)
}

// NewEngine creates an Engine resolving blob URLs through objects.
func NewEngine(objects *Objects, logger *zap.Logger) *Engine {
	logger = logging.OrNop(logger)
	return &Engine{
		objects: objects,
		client:  &http.Client{},
		logger:  logger,
		open:    openFitz,
	}
}

// Load fetches and parses the document at rawURL.
func (e *Engine) Load(ctx context.Context, rawURL string) (viewer.Document, error) {
	data, err := e.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return nil, fmt.Errorf("validating pdf: %w", err)
	}
	dims, err := api.PageDims(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("reading page dimensions: %w", err)
	}

	raster, err := e.open(data)
	if err != nil {
		return nil, fmt.Errorf("opening pdf for rendering: %w", err)
	}

	e.logger.Debug("document loaded", zap.String("url", rawURL), zap.Int("pages", len(dims)))
	return &Document{dims: dims, raster: raster}, nil
}

func (e *Engine) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if isBlobURL(rawURL) {
		if e.objects == nil {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, rawURL)
		}
		data, _, ok := e.objects.Get(rawURL)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, rawURL)
		}
		return data, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}

	switch u.Scheme {
	case "":
		return os.ReadFile(rawURL)
	case "file":
		return os.ReadFile(u.Path)
	case "http", "https":
		return e.download(ctx, rawURL)
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, u.Scheme)
	}
}

func (e *Engine) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: status %d", rawURL, resp.StatusCode)
	}
	return body, nil
}

// Document is a loaded PDF. Rendering is serialised; the underlying
// rasterizer is not safe for concurrent use.
type Document struct {
	dims []types.Dim

	mu     sync.Mutex
	raster rasterizer
	closed bool
}

// NumPages returns the page count.
func (d *Document) NumPages() int { return len(d.dims) }

// Page returns page n, numbered from 1.
func (d *Document) Page(ctx context.Context, n int) (viewer.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 1 || n > len(d.dims) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, n, len(d.dims))
	}
	return &Page{doc: d, index: n - 1, width: d.dims[n-1].Width, height: d.dims[n-1].Height}, nil
}

// Close releases the rasterizer. Subsequent renders return ErrClosed.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.raster.Close()
}

// Page is one page of a Document. Width and height are in PDF points.
type Page struct {
	doc    *Document
	index  int
	width  float64
	height float64
}

// Viewport returns the page's pixel dimensions at scale.
func (p *Page) Viewport(scale float64) viewer.Viewport {
	return ViewportFor(p.width, p.height, scale)
}

// ViewportFor computes the pixel viewport of a width x height point page.
// Fractional pixels are truncated, as a canvas does when sized.
func ViewportFor(width, height, scale float64) viewer.Viewport {
	return viewer.Viewport{
		Width:  int(math.Floor(width * scale)),
		Height: int(math.Floor(height * scale)),
		Scale:  scale,
	}
}

// Render rasterises the page at the viewport's scale.
func (p *Page) Render(ctx context.Context, vp viewer.Viewport) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	if p.doc.closed {
		return nil, ErrClosed
	}

	img, err := p.doc.raster.ImageDPI(p.index, pointsPerInch*vp.Scale)
	if err != nil {
		return nil, fmt.Errorf("rasterising page %d: %w", p.index+1, err)
	}
	return img, nil
}

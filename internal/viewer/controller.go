package viewer

import (
	"context"
	"fmt"
	"image"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/contractqa/internal/logging"
)

// Config holds Controller settings.
type Config struct {
	// Scale is the viewport scale factor pages are rendered at.
	Scale  float64
	Logger *zap.Logger
}

// Controller mediates between the presentation layer, the rendering library
// and the backend. It is safe for concurrent use.
type Controller struct {
	id      string
	scale   float64
	logger  *zap.Logger
	backend Backend
	loader  Loader
	objects ObjectURLs
	surface Surface
	display Display

	mu      sync.Mutex
	session session

	// renderSeq issues a token per render call. Only the render holding the
	// latest token may commit to the surface and page label.
	renderSeq atomic.Uint64
	commitMu  sync.Mutex
}

// NewController creates a Controller with an empty session.
func NewController(cfg Config, backend Backend, loader Loader, objects ObjectURLs, surface Surface, display Display) *Controller {
	scale := cfg.Scale
	if scale <= 0 {
		scale = 1.5
	}
	logger := logging.OrNop(cfg.Logger)
	id := uuid.NewString()
	return &Controller{
		id:      id,
		scale:   scale,
		logger:  logger.With(zap.String("session", id)),
		backend: backend,
		loader:  loader,
		objects: objects,
		surface: surface,
		display: display,
	}
}

// Session returns a snapshot of the current session.
func (c *Controller) Session() SessionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.info(c.id)
}

// State returns the logical session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.state()
}

// Upload sends f to the backend, stores the returned contract identifier and
// loads the document locally starting at page 1. The file and contract are
// recorded together, so a failed upload leaves the previous pair in place.
//
// Backend failures are logged and returned; they are not shown as notices.
func (c *Controller) Upload(ctx context.Context, f *File) error {
	if f.Empty() {
		return c.reject(&InputError{Action: "upload", Message: msgSelectFile, Err: ErrNoFile})
	}

	res, err := c.backend.Upload(ctx, f.Name, f.Data)
	if err != nil {
		c.logger.Error("upload failed", zap.String("file", f.Name), zap.Error(err))
		return fmt.Errorf("uploading %s: %w", f.Name, err)
	}

	url := c.objects.Create(f.Name, f.Data)

	c.mu.Lock()
	prevURL := c.session.objectURL
	c.session.file = f
	c.session.contractID = res.ContractID
	c.session.uploadStatus = res.Status
	c.session.objectURL = url
	c.mu.Unlock()

	if prevURL != "" {
		c.objects.Revoke(prevURL)
	}

	c.logger.Info("document uploaded",
		zap.String("file", f.Name),
		zap.String("contract_id", res.ContractID),
		zap.String("status", res.Status))

	return c.LoadDocument(ctx, url)
}

// LoadDocument parses the document at url, resets the page number to 1,
// publishes the page count and renders the first page. The previous
// document, if any, is replaced.
func (c *Controller) LoadDocument(ctx context.Context, url string) error {
	doc, err := c.loader.Load(ctx, url)
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}

	c.mu.Lock()
	prev := c.session.document
	c.session.document = doc
	c.session.pageNumber = 1
	token := c.renderSeq.Add(1)
	c.mu.Unlock()

	if closer, ok := prev.(io.Closer); ok && prev != doc {
		if err := closer.Close(); err != nil {
			c.logger.Warn("closing previous document", zap.Error(err))
		}
	}

	c.display.ShowPageCount(doc.NumPages())
	return c.render(ctx, doc, 1, token)
}

// RenderPage renders page n of the loaded document without changing the
// current page number.
func (c *Controller) RenderPage(ctx context.Context, n int) error {
	c.mu.Lock()
	doc := c.session.document
	if doc == nil {
		c.mu.Unlock()
		return c.reject(&InputError{Action: "render", Message: msgNoDocument, Err: ErrNoDocument})
	}
	token := c.renderSeq.Add(1)
	c.mu.Unlock()

	return c.render(ctx, doc, n, token)
}

// PrevPage moves to the previous page. It is a no-op on the first page.
func (c *Controller) PrevPage(ctx context.Context) error {
	return c.step(ctx, "prev", -1)
}

// NextPage moves to the next page. It is a no-op on the last page.
func (c *Controller) NextPage(ctx context.Context) error {
	return c.step(ctx, "next", 1)
}

func (c *Controller) step(ctx context.Context, action string, delta int) error {
	c.mu.Lock()
	doc := c.session.document
	if doc == nil {
		c.mu.Unlock()
		return c.reject(&InputError{Action: action, Message: msgNoDocument, Err: ErrNoDocument})
	}
	next := c.session.pageNumber + delta
	if next < 1 || next > doc.NumPages() {
		c.mu.Unlock()
		return nil
	}
	c.session.pageNumber = next
	token := c.renderSeq.Add(1)
	c.mu.Unlock()

	return c.render(ctx, doc, next, token)
}

// presenter is a Surface that can resize and draw as one update.
type presenter interface {
	Present(width, height int, img image.Image)
}

// render draws page n if token is still the latest when rasterising ends.
// Tokens are issued under c.mu together with the page number change they
// belong to, so the committed page always matches the session.
func (c *Controller) render(ctx context.Context, doc Document, n int, token uint64) error {
	page, err := doc.Page(ctx, n)
	if err != nil {
		return fmt.Errorf("fetching page %d: %w", n, err)
	}
	vp := page.Viewport(c.scale)
	img, err := page.Render(ctx, vp)
	if err != nil {
		return fmt.Errorf("rendering page %d: %w", n, err)
	}

	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	if token != c.renderSeq.Load() {
		c.logger.Debug("discarding stale render", zap.Int("page", n))
		return nil
	}

	if p, ok := c.surface.(presenter); ok {
		p.Present(vp.Width, vp.Height, img)
	} else {
		c.surface.Resize(vp.Width, vp.Height)
		c.surface.Draw(img)
	}
	c.display.ShowPageNumber(n)
	return nil
}

// Ask sends question about the uploaded document to the backend and displays
// the answer, or NoAnswerPlaceholder when the backend has none.
func (c *Controller) Ask(ctx context.Context, question string) (string, error) {
	q := strings.TrimSpace(question)

	c.mu.Lock()
	file := c.session.file
	contractID := c.session.contractID
	c.mu.Unlock()

	if q == "" {
		return "", c.reject(&InputError{Action: "ask", Message: msgAsk, Err: ErrEmptyQuestion})
	}
	if file == nil || contractID == "" {
		return "", c.reject(&InputError{Action: "ask", Message: msgAsk, Err: ErrNoContract})
	}

	res, err := c.backend.Ask(ctx, q, &contractID)
	if err != nil {
		c.logger.Error("ask failed", zap.String("contract_id", contractID), zap.Error(err))
		return "", fmt.Errorf("asking question: %w", err)
	}

	answer := AnswerText(res)
	c.display.ShowAnswer(answer)
	return answer, nil
}

// Highlight is reserved for marking text on the rendered page. It currently
// only records the request.
func (c *Controller) Highlight(text string) {
	c.logger.Debug("highlight text", zap.String("text", text))
}

// AnswerText returns the answer to display for res.
func AnswerText(res *AskResult) string {
	if res == nil || res.Answer == "" {
		return NoAnswerPlaceholder
	}
	return res.Answer
}

func (c *Controller) reject(e *InputError) error {
	c.logger.Debug("input rejected", zap.String("action", e.Action), zap.Error(e.Err))
	c.display.ShowNotice(e.Notice())
	return e
}

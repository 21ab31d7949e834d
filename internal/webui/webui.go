// Package webui serves the browser page that drives a viewer session: the
// document picker, the rendered canvas, page navigation and the question box.
package webui

import (
	"context"
	"io"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/contractqa/internal/logging"
	"github.com/ziadkadry99/contractqa/internal/viewer"
)

// Controller is the subset of *viewer.Controller the page drives.
type Controller interface {
	Upload(ctx context.Context, f *viewer.File) error
	PrevPage(ctx context.Context) error
	NextPage(ctx context.Context) error
	Ask(ctx context.Context, question string) (string, error)
	Highlight(text string)
	Session() viewer.SessionInfo
}

// Frame is the canvas the page image is served from.
type Frame interface {
	Empty() bool
	EncodePNG(w io.Writer) error
}

// Config configures a UI.
type Config struct {
	// AllowAllOrigins accepts WebSocket connections from pages on any
	// origin. Otherwise only localhost and same-host pages may connect.
	AllowAllOrigins bool
	Logger          *zap.Logger
}

// UI serves the page, the upload endpoint, the canvas image and the
// WebSocket action channel.
type UI struct {
	controller Controller
	frame      Frame
	hub        *Hub
	logger     *zap.Logger
	maxUpload  int64
	allowAll   bool
	upgrader   websocket.Upgrader
}

// New creates a UI. hub must be the Display the controller reports to.
func New(controller Controller, frame Frame, hub *Hub, cfg Config) *UI {
	u := &UI{
		controller: controller,
		frame:      frame,
		hub:        hub,
		logger:     logging.OrNop(cfg.Logger).Named("webui"),
		maxUpload:  64 << 20,
		allowAll:   cfg.AllowAllOrigins,
	}
	u.upgrader = websocket.Upgrader{CheckOrigin: u.checkOrigin}
	return u
}

// RegisterRoutes mounts all page routes onto the given router.
func (u *UI) RegisterRoutes(r chi.Router) {
	r.Get("/", u.ServeIndex)
	r.Post("/api/upload", u.handleUpload)
	r.Get("/api/session", u.handleSession)
	r.Get("/canvas.png", u.handleCanvas)
	r.Get("/ws", u.handleWebSocket)
}

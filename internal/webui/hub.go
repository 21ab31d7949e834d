package webui

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/contractqa/internal/logging"
	"github.com/ziadkadry99/contractqa/internal/viewer"
)

// Event types pushed to the page.
const (
	EventSession   = "session"
	EventPageCount = "page_count"
	EventPageNum   = "page_num"
	EventAnswer    = "answer"
	EventNotice    = "notice"
	EventCanvas    = "canvas"
	EventError     = "error"
)

// Event is the outgoing WebSocket message format.
type Event struct {
	Type       string         `json:"type"`
	PageCount  int            `json:"page_count,omitempty"`
	PageNum    int            `json:"page_num,omitempty"`
	Answer     string         `json:"answer,omitempty"`
	AnswerHTML string         `json:"answer_html,omitempty"`
	Notice     *viewer.Notice `json:"notice,omitempty"`
	Version    uint64         `json:"version,omitempty"`
	Message    string         `json:"message,omitempty"`
}

// Versioned reports a counter that changes whenever the image does.
type Versioned interface {
	Version() uint64
}

// client serialises writes to one connection.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) send(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(ev)
}

// Hub implements viewer.Display by pushing events to every connected page.
// It remembers the latest labels so pages that connect later start in sync.
type Hub struct {
	frame  Versioned
	logger *zap.Logger

	mu        sync.Mutex
	clients   map[*client]struct{}
	pageCount int
	pageNum   int
	answer    string
}

var _ viewer.Display = (*Hub)(nil)

// NewHub creates a Hub. frame supplies the version sent with canvas events.
func NewHub(frame Versioned, logger *zap.Logger) *Hub {
	logger = logging.OrNop(logger)
	return &Hub{
		frame:   frame,
		logger:  logger.Named("hub"),
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) ShowPageCount(n int) {
	h.mu.Lock()
	h.pageCount = n
	h.mu.Unlock()
	h.broadcast(Event{Type: EventPageCount, PageCount: n})
}

// ShowPageNumber is called after the surface is drawn, so it also tells
// pages to reload the canvas image.
func (h *Hub) ShowPageNumber(n int) {
	h.mu.Lock()
	h.pageNum = n
	h.mu.Unlock()
	h.broadcast(Event{Type: EventPageNum, PageNum: n})
	h.broadcast(Event{Type: EventCanvas, Version: h.version()})
}

func (h *Hub) ShowAnswer(text string) {
	h.mu.Lock()
	h.answer = text
	h.mu.Unlock()
	h.broadcast(h.answerEvent(text))
}

func (h *Hub) ShowNotice(n viewer.Notice) {
	h.broadcast(Event{Type: EventNotice, Notice: &n})
}

// Clients returns the number of connected pages.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) answerEvent(text string) Event {
	ev := Event{Type: EventAnswer, Answer: text}
	html, err := renderAnswer(text)
	if err != nil {
		h.logger.Warn("rendering answer markdown", zap.Error(err))
		return ev
	}
	ev.AnswerHTML = html
	return ev
}

func (h *Hub) version() uint64 {
	if h.frame == nil {
		return 0
	}
	return h.frame.Version()
}

// register adds conn and sends it the current session state.
func (h *Hub) register(conn *websocket.Conn) *client {
	c := &client{conn: conn}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	state := Event{Type: EventSession, PageCount: h.pageCount, PageNum: h.pageNum, Answer: h.answer}
	h.mu.Unlock()

	if state.Answer != "" {
		state.AnswerHTML = h.answerEvent(state.Answer).AnswerHTML
	}
	if state.PageNum > 0 {
		state.Version = h.version()
	}
	if err := c.send(state); err != nil {
		h.logger.Debug("sending session state", zap.Error(err))
	}
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *Hub) broadcast(ev Event) {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.send(ev); err != nil {
			h.logger.Debug("dropping client", zap.Error(err))
			h.unregister(c)
			c.conn.Close()
		}
	}
}

package webui

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/contractqa/internal/viewer"
)

// checkOrigin admits clients that send no Origin (non-browser tools),
// pages served from this host and pages on localhost.
func (u *UI) checkOrigin(r *http.Request) bool {
	if u.allowAll {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	o, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(o.Host, r.Host) {
		return true
	}
	switch o.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// action is the incoming WebSocket message format.
type action struct {
	Type     string `json:"type"` // "prev", "next", "ask" or "highlight"
	Question string `json:"question,omitempty"`
	Text     string `json:"text,omitempty"`
}

func (u *UI) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		u.logger.Warn("websocket upgrade", zap.String("origin", r.Header.Get("Origin")), zap.Error(err))
		return
	}
	defer conn.Close()

	c := u.hub.register(conn)
	defer u.hub.unregister(c)
	u.logger.Debug("page connected", zap.Int("clients", u.hub.Clients()))

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				u.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var a action
		if err := json.Unmarshal(msg, &a); err != nil {
			u.sendError(c, "invalid message format")
			continue
		}

		ctx := r.Context()
		switch a.Type {
		case "prev":
			err = u.controller.PrevPage(ctx)
		case "next":
			err = u.controller.NextPage(ctx)
		case "ask":
			_, err = u.controller.Ask(ctx, a.Question)
		case "highlight":
			u.controller.Highlight(a.Text)
		default:
			u.sendError(c, "unknown message type: "+a.Type)
			continue
		}

		// Input errors already reached every page as a notice.
		var inputErr *viewer.InputError
		if err != nil && !errors.As(err, &inputErr) {
			u.sendError(c, a.Type+" failed: "+err.Error())
		}
	}
}

func (u *UI) sendError(c *client, message string) {
	if err := c.send(Event{Type: EventError, Message: message}); err != nil {
		u.logger.Debug("websocket write error", zap.Error(err))
	}
}

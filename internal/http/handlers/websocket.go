package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"metaladmin/internal/services"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPingInterval = 20 * time.Second
	// pings every 20s, so a silent peer is dropped after 30s
	wsReadWait = 30 * time.Second
)

// WebSocketMessage is a frame of the view stream in either direction.
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type incomingMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (h *ViewHandler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin:     h.checkOrigin,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

func (h *ViewHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// Stream godoc
// @Summary Stream list view states over a websocket
// @Description Sends a "state" frame after every change of the view. Clients may send "search", "page", "refresh" and "ping" frames. Browsers pass the token as ?token=.
// @Tags views
// @Param id path string true "View ID"
// @Param token query string false "Bearer token"
// @Router /views/{id}/ws [get]
// @Security BearerAuth
func (h *ViewHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	sess, err := h.viewService.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err, "failed to open view stream")
	}

	conn, err := h.upgrader().Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already answered the request
		log.Warn().Err(err).Str("session_id", sess.ID).Msg("WebSocket upgrade failed")
		return nil
	}

	states, cancel := sess.Subscribe()
	defer cancel()

	replies := make(chan WebSocketMessage, 8)
	done := make(chan struct{})
	go h.readPump(ctx, conn, sess.ID, replies, done)
	h.writePump(conn, sess, states, replies, done)

	log.Debug().Str("session_id", sess.ID).Msg("View stream closed")
	return nil
}

// readPump applies commands from the client until the connection fails.
func (h *ViewHandler) readPump(ctx context.Context, conn *websocket.Conn, id string, replies chan<- WebSocketMessage, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(64 << 10)
	conn.SetReadDeadline(time.Now().Add(wsReadWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadWait))
	})

	reply := func(msgType string, data interface{}) {
		select {
		case replies <- WebSocketMessage{Type: msgType, Data: data, Timestamp: time.Now()}:
		default:
		}
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session_id", id).Msg("WebSocket read failed")
			}
			return
		}

		var msg incomingMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			reply("error", "invalid message")
			continue
		}

		switch msg.Type {
		case "ping":
			reply("pong", map[string]string{"status": "ok"})
		case "search":
			var req SearchRequest
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				reply("error", "invalid search message")
				continue
			}
			if _, err := h.viewService.Search(ctx, id, req.Search); err != nil {
				reply("error", err.Error())
			}
		case "page":
			var req PageRequest
			if err := json.Unmarshal(msg.Data, &req); err != nil {
				reply("error", "invalid page message")
				continue
			}
			if _, err := h.viewService.Page(ctx, id, req.Page, req.PageSize); err != nil {
				reply("error", err.Error())
			}
		case "refresh":
			if _, err := h.viewService.Refresh(ctx, id); err != nil {
				reply("error", err.Error())
			}
		default:
			reply("error", "unknown message type "+msg.Type)
		}
	}
}

// writePump owns every write to conn: view states, replies and pings.
func (h *ViewHandler) writePump(conn *websocket.Conn, sess *services.ViewSession, states <-chan interface{}, replies <-chan WebSocketMessage, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	write := func(msg WebSocketMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.Warn().Err(err).Str("session_id", sess.ID).Msg("WebSocket write failed")
			return false
		}
		return true
	}

	if !write(WebSocketMessage{Type: "state", Data: sess.State(), Timestamp: time.Now()}) {
		return
	}

	for {
		select {
		case state, ok := <-states:
			if !ok {
				// session closed or expired
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "view closed"))
				return
			}
			if !write(WebSocketMessage{Type: "state", Data: state, Timestamp: time.Now()}) {
				return
			}
		case msg := <-replies:
			if !write(msg) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

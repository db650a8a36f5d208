package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/steveyiyo/asanasense-backend/internal/core/orchestrator"
	"github.com/steveyiyo/asanasense-backend/internal/core/session"
	"github.com/steveyiyo/asanasense-backend/pkg/types"
	"github.com/steveyiyo/asanasense-backend/pkg/ws"
)

const frameMessage = "frame"

type StreamHandler struct {
	Hub      *ws.Hub
	Sess     *session.Service
	Log      *slog.Logger
	Upgrader websocket.Upgrader
}

func NewStreamHandler(h *ws.Hub, s *session.Service, log *slog.Logger) *StreamHandler {
	return &StreamHandler{
		Hub:  h,
		Sess: s,
		Log:  log,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WS is the live render loop: the client streams camera frames and events,
// the server answers each cycle with a snapshot and pushes a new one
// whenever the session changes on its own.
func (h *StreamHandler) WS(c *gin.Context) {
	id := c.Query("sess")
	b, ok := h.Sess.Get(id)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	h.Hub.Add(id, conn)
	b.Attach(func(s types.Snapshot) {
		if err := h.Hub.Send(id, s); err != nil {
			h.Log.Debug("snapshot push failed", "session", id, "err", err)
		}
	})
	defer func() {
		b.Detach()
		h.Hub.Remove(id, conn)
		conn.Close()
	}()

	conn.SetReadLimit(8 << 20)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx := c.Request.Context()
	_ = h.Hub.Send(id, gin.H{
		"type": "hello",
		"ts":   time.Now().UnixMilli(),
	})
	_ = h.Hub.Send(id, b.Render(ctx))

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.EventReq
		if err := json.Unmarshal(msg, &req); err != nil {
			_ = h.Hub.Send(id, gin.H{"type": "error", "error": "bad_request"})
			continue
		}
		if req.Type == frameMessage {
			b.StoreFrame(req.Image)
			continue
		}

		ev, err := session.DecodeEvent(req)
		if err != nil {
			_ = h.Hub.Send(id, gin.H{"type": "error", "error": "bad_event", "detail": err.Error()})
			continue
		}
		snap, out := b.Cycle(ctx, ev)
		// Applied events already pushed a snapshot through Attach.
		if out != orchestrator.Applied {
			if err := h.Hub.Send(id, snap); err != nil {
				return
			}
		}
	}
}

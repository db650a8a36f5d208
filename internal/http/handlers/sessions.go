package handlers

import (
	"errors"
	"net/http"

	"github.com/steveyiyo/asanasense-backend/internal/core/session"
	"github.com/steveyiyo/asanasense-backend/pkg/types"

	"github.com/gin-gonic/gin"
)

type SessionsHandler struct {
	Svc    *session.Service
	Scheme string
	Host   string
}

func NewSessionsHandler(svc *session.Service, scheme, host string) *SessionsHandler {
	return &SessionsHandler{Svc: svc, Scheme: scheme, Host: host}
}

func (h *SessionsHandler) Create(c *gin.Context) {
	var req types.CreateSessionReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
			return
		}
	}
	pref := types.VoicePreference{Supported: true, Enabled: req.VoiceEnabled}
	if req.VoiceSupported != nil {
		pref.Supported = *req.VoiceSupported
	}
	b := h.Svc.Create(pref)
	ws := h.Scheme + "://" + h.Host + "/v1/stream?sess=" + b.ID
	c.JSON(http.StatusOK, types.CreateSessionResp{
		SessionID: b.ID,
		WSURL:     ws,
		Snapshot:  b.Render(c.Request.Context()),
	})
}

// Snapshot runs one render cycle without an event.
func (h *SessionsHandler) Snapshot(c *gin.Context) {
	b, ok := h.Svc.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, b.Render(c.Request.Context()))
}

// Event runs one render cycle carrying the client's event.
func (h *SessionsHandler) Event(c *gin.Context) {
	b, ok := h.Svc.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	var req types.EventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	ev, err := session.DecodeEvent(req)
	if err != nil {
		code := "bad_event"
		if errors.Is(err, session.ErrMissingEventID) {
			code = "missing_id"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": code, "detail": err.Error()})
		return
	}
	snap, _ := b.Cycle(c.Request.Context(), ev)
	c.JSON(http.StatusOK, snap)
}

func (h *SessionsHandler) Frame(c *gin.Context) {
	b, ok := h.Svc.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	var req types.FrameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request"})
		return
	}
	b.StoreFrame(req.Image)
	c.Status(http.StatusNoContent)
}

func (h *SessionsHandler) Delete(c *gin.Context) {
	if !h.Svc.Close(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionsHandler) Summary(c *gin.Context) {
	id := c.Param("id")
	sum, ok := h.Svc.Summary(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

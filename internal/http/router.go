package http

import (
	"log/slog"

	"github.com/steveyiyo/asanasense-backend/internal/config"
	"github.com/steveyiyo/asanasense-backend/internal/core/session"
	ttsprov "github.com/steveyiyo/asanasense-backend/internal/core/tts"
	"github.com/steveyiyo/asanasense-backend/internal/http/handlers"
	"github.com/steveyiyo/asanasense-backend/pkg/ws"

	"github.com/gin-gonic/gin"
)

func NewRouter(cfg config.Config, svc *session.Service, tts ttsprov.Provider, log *slog.Logger) *gin.Engine {
	r := gin.Default()
	hub := ws.NewHub()
	baseScheme := "ws"
	if cfg.TLS {
		baseScheme = "wss"
	}
	host := cfg.PublicHost
	if host == "" {
		host = "localhost:" + cfg.Port
	}
	sh := handlers.NewSessionsHandler(svc, baseScheme, host)
	wsh := handlers.NewStreamHandler(hub, svc, log)
	th := handlers.NewTTSHandler(tts)
	api := r.Group("/v1")
	api.POST("/sessions", sh.Create)
	api.GET("/sessions/:id", sh.Snapshot)
	api.DELETE("/sessions/:id", sh.Delete)
	api.POST("/sessions/:id/events", sh.Event)
	api.POST("/sessions/:id/frames", sh.Frame)
	api.GET("/sessions/:id/summary", sh.Summary)
	api.POST("/tts", th.Synthesize)
	r.GET("/v1/stream", wsh.WS)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	return r
}

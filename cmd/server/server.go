package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/steveyiyo/asanasense-backend/internal/config"
	"github.com/steveyiyo/asanasense-backend/internal/core/analysis"
	"github.com/steveyiyo/asanasense-backend/internal/core/gemini"
	"github.com/steveyiyo/asanasense-backend/internal/core/session"
	"github.com/steveyiyo/asanasense-backend/internal/core/tts"
	h "github.com/steveyiyo/asanasense-backend/internal/http"
	"github.com/steveyiyo/asanasense-backend/internal/logging"
	"github.com/steveyiyo/asanasense-backend/internal/repo/memory"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger, closer := logging.New(cfg.LogFile, cfg.LogLevel)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	vision, err := gemini.New(ctx, cfg.GoogleAPIKey, cfg.Model, cfg.AnalysisTimeout)
	if err != nil {
		log.Fatal("set GOOGLE_API_KEY in the environment or .env: ", err)
	}
	defer vision.Close()

	analyzer := analysis.NewService(vision,
		analysis.WithNormalizeOptions(analysis.NormalizeOptions{MaxEdge: cfg.ImageMaxEdge, Quality: cfg.JPEGQuality}),
		analysis.WithLogger(logger),
	)
	speech := tts.NewGoogleStub(cfg.TTSBase)
	svc, err := session.NewService(ctx, memory.NewStore[*session.Bridge](), analyzer, speech, session.Options{
		WakeWords:       cfg.WakeWords,
		DedupWindow:     cfg.DedupWindow,
		AnalysisTimeout: cfg.AnalysisTimeout,
		FrameMaxAge:     10 * time.Second,
	}, logger)
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: h.NewRouter(cfg, svc, speech, logger)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "port", cfg.Port, "model", cfg.Model)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	svc.Shutdown()
}

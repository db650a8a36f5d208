package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/steveyiyo/asanasense-backend/internal/core/camera"
	"github.com/steveyiyo/asanasense-backend/internal/core/orchestrator"
	"github.com/steveyiyo/asanasense-backend/internal/core/trigger"
	"github.com/steveyiyo/asanasense-backend/internal/core/tts"
	"github.com/steveyiyo/asanasense-backend/internal/repo/memory"
	"github.com/steveyiyo/asanasense-backend/pkg/types"
)

type Options struct {
	WakeWords       []string
	DedupWindow     int
	AnalysisTimeout time.Duration
	FrameMaxAge     time.Duration
}

type Service struct {
	Repo     *memory.Store[*Bridge]
	Analyzer orchestrator.Analyzer
	TTS      tts.Provider

	ctx  context.Context
	opts Options
	wake *trigger.WakeWord
	log  *slog.Logger
}

// NewService creates sessions whose background work lives as long as ctx.
func NewService(ctx context.Context, repo *memory.Store[*Bridge], a orchestrator.Analyzer, speech tts.Provider, opts Options, log *slog.Logger) (*Service, error) {
	if len(opts.WakeWords) == 0 {
		opts.WakeWords = trigger.DefaultWakeWords
	}
	wake, err := trigger.NewWakeWord(opts.WakeWords)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{Repo: repo, Analyzer: a, TTS: speech, ctx: ctx, opts: opts, wake: wake, log: log}, nil
}

func (s *Service) Create(pref types.VoicePreference) *Bridge {
	id := "sess_" + uuid.NewString()
	log := s.log.With("session", id)

	mopts := []orchestrator.Option{
		orchestrator.WithVoice(pref),
		orchestrator.WithLogger(log),
	}
	if s.opts.DedupWindow > 0 {
		mopts = append(mopts, orchestrator.WithDedupWindow(s.opts.DedupWindow))
	}
	if s.opts.AnalysisTimeout > 0 {
		mopts = append(mopts, orchestrator.WithAnalysisTimeout(s.opts.AnalysisTimeout))
	}
	m := orchestrator.New(s.Analyzer, mopts...)

	b := newBridge(s.ctx, id, m, s.wake, camera.NewFrameBuffer(s.opts.FrameMaxAge), s.TTS, log)
	s.Repo.Save(id, b)
	log.Info("session created", "voice_supported", pref.Supported, "voice_enabled", pref.Enabled)
	return b
}

func (s *Service) Get(id string) (*Bridge, bool) {
	return s.Repo.Get(id)
}

// Close ends a session. A running analysis is left to finish in the
// background.
func (s *Service) Close(id string) bool {
	b, ok := s.Repo.Take(id)
	if !ok {
		return false
	}
	go b.Close()
	s.log.Info("session closed", "session", id)
	return true
}

// Shutdown closes every session and waits for them.
func (s *Service) Shutdown() {
	s.Repo.Range(func(id string, b *Bridge) bool {
		s.Repo.Take(id)
		b.Close()
		return true
	})
}

func (s *Service) Summary(id string) (types.SummaryResp, bool) {
	b, ok := s.Repo.Get(id)
	if !ok {
		return types.SummaryResp{}, false
	}
	st := b.State()
	sum := types.SummaryResp{
		SessionID:  id,
		State:      st.System,
		Captures:   st.Stats.Captures,
		Analyses:   st.Stats.Analyses,
		Failures:   st.Stats.Failures,
		Suppressed: st.Stats.Suppressed,
		Duplicates: st.Stats.Duplicates,
	}
	if st.Feedback != nil {
		sum.LastAsanaName = st.Feedback.AsanaName
	}
	return sum, true
}

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/steveyiyo/asanasense-backend/internal/core/camera"
	"github.com/steveyiyo/asanasense-backend/internal/core/orchestrator"
	"github.com/steveyiyo/asanasense-backend/internal/core/trigger"
	"github.com/steveyiyo/asanasense-backend/internal/core/tts"
	"github.com/steveyiyo/asanasense-backend/internal/core/voice"
	"github.com/steveyiyo/asanasense-backend/pkg/types"
)

// Bridge is the per-session memory between otherwise stateless render
// cycles. It owns the machine and the capability adapters wired to it.
type Bridge struct {
	ID string

	machine  *orchestrator.Machine
	arbiter  *trigger.Arbiter
	frames   *camera.FrameBuffer
	feed     *voice.FeedRecognizer
	listener *voice.Listener
	tts      tts.Provider
	log      *slog.Logger

	mu         sync.Mutex
	lastSpoken string
	fed        string
	publish    func(types.Snapshot)
}

func newBridge(ctx context.Context, id string, m *orchestrator.Machine, wake *trigger.WakeWord, frames *camera.FrameBuffer, speech tts.Provider, log *slog.Logger) *Bridge {
	b := &Bridge{
		ID:      id,
		machine: m,
		frames:  frames,
		feed:    voice.NewFeedRecognizer(),
		tts:     speech,
		log:     log,
	}
	b.arbiter = trigger.NewArbiter(wake, frames, log)
	b.listener = voice.NewListener(b.feed, b.Hear,
		voice.WithErrorHandler(b.voiceFailed),
		voice.WithListenerLogger(log),
	)
	m.Subscribe(b.onTransition)
	b.listener.Start(ctx)
	b.listener.SetActive(m.State().System == types.StateListening)
	return b
}

// Attach registers the live presenter that receives a fresh snapshot after
// every state change. Only one presenter is attached at a time.
func (b *Bridge) Attach(fn func(types.Snapshot)) {
	b.mu.Lock()
	b.publish = fn
	b.mu.Unlock()
}

func (b *Bridge) Detach() { b.Attach(nil) }

func (b *Bridge) State() orchestrator.State { return b.machine.State() }

func (b *Bridge) StoreFrame(payload string) { b.frames.Store(payload) }

// Cycle hands at most one inbound event to the machine and renders.
func (b *Bridge) Cycle(ctx context.Context, ev orchestrator.Event) (types.Snapshot, orchestrator.Outcome) {
	out := orchestrator.Ignored
	if ev != nil {
		out = b.dispatch(ctx, ev)
	}
	b.mu.Lock()
	attached := b.publish != nil
	b.mu.Unlock()
	// The attached presenter already received this change; rendering again
	// here would steal its speech cue.
	if out == orchestrator.Applied && attached {
		return b.render(ctx, false), out
	}
	return b.Render(ctx), out
}

func (b *Bridge) dispatch(ctx context.Context, ev orchestrator.Event) orchestrator.Outcome {
	switch e := ev.(type) {
	case orchestrator.CaptureEvent:
		if !b.arbiter.Admit(e, b.machine.State()) {
			return b.machine.Drop(e)
		}
		return b.machine.Handle(ctx, e)
	case orchestrator.ControlEvent:
		out := b.machine.Handle(ctx, e)
		// Client transcripts are already applied above; the listener only
		// needs them for wake word matching, and only while it is listening.
		if out == orchestrator.Applied && e.Kind == orchestrator.KindVoiceTranscript && b.listener.Active() {
			b.mu.Lock()
			b.fed = e.Text
			b.mu.Unlock()
			b.feed.Push(e.Text)
		}
		return out
	default:
		return b.machine.Handle(ctx, ev)
	}
}

// Hear is the listener's sink for recognized utterances.
func (b *Bridge) Hear(ctx context.Context, text string) {
	b.mu.Lock()
	applied := b.fed != "" && b.fed == text
	b.fed = ""
	b.mu.Unlock()

	d := b.arbiter.Hear(text, b.machine.State())
	if !applied {
		b.machine.Handle(ctx, d.Transcript)
	}
	if d.Failure != nil {
		b.machine.Handle(ctx, *d.Failure)
	}
	if d.Capture != nil {
		b.machine.Handle(ctx, *d.Capture)
	}
}

func (b *Bridge) voiceFailed(ctx context.Context, err error) {
	ev := orchestrator.NewControl(orchestrator.KindVoiceError)
	if errors.Is(err, voice.ErrUnsupported) {
		ev = orchestrator.NewControl(orchestrator.KindVoiceUnsupported)
	}
	ev.Message = err.Error()
	b.machine.Handle(ctx, ev)
}

// Render builds the presentation snapshot. ShouldSpeak is true only on the
// first render after the coaching copy changes.
func (b *Bridge) Render(ctx context.Context) types.Snapshot {
	return b.render(ctx, true)
}

func (b *Bridge) render(ctx context.Context, speak bool) types.Snapshot {
	st := b.machine.State()
	snap := types.Snapshot{
		Type:            "snapshot",
		SessionID:       b.ID,
		SystemState:     st.System,
		Feedback:        st.Feedback,
		RawAnalysisText: st.RawAnalysisText,
		VoiceEnabled:    st.Voice.Enabled,
		VoiceSupported:  st.Voice.Supported,
		StatusText:      StatusText(st),
		LastCaptureID:   st.LastCaptureID,
		Transcript:      st.Transcript,
	}
	if !speak || st.Feedback == nil || st.Feedback.CoachingCopy == "" {
		return snap
	}

	b.mu.Lock()
	if st.Feedback.CoachingCopy != b.lastSpoken {
		b.lastSpoken = st.Feedback.CoachingCopy
		snap.ShouldSpeak = true
	}
	b.mu.Unlock()

	if snap.ShouldSpeak && b.tts != nil {
		url, dur, err := b.tts.Synthesize(ctx, st.Feedback.CoachingCopy, tts.Options{Format: "mp3"})
		if err != nil {
			b.log.Warn("coaching speech synthesis failed", "session", b.ID, "err", err)
		} else {
			snap.Speech = &types.Speech{AudioURL: url, DurationMs: dur}
		}
	}
	return snap
}

func (b *Bridge) onTransition(st orchestrator.State) {
	b.listener.SetActive(st.System == types.StateListening)

	b.mu.Lock()
	publish := b.publish
	b.mu.Unlock()
	if publish != nil {
		publish(b.Render(context.Background()))
	}
}

// Close stops the listener and waits for a running analysis to finish.
func (b *Bridge) Close() {
	b.Detach()
	b.listener.Stop()
	b.machine.Wait()
}

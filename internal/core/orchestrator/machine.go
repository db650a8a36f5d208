package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/steveyiyo/asanasense-backend/internal/core/analysis"
	"github.com/steveyiyo/asanasense-backend/pkg/types"
)

// Analyzer turns a captured frame payload into feedback. It returns the raw
// model text alongside, when there is one.
type Analyzer interface {
	AnalyzeCapture(ctx context.Context, payload string) (types.Feedback, string, error)
}

type Outcome int

const (
	Applied Outcome = iota
	Duplicate
	Suppressed
	Ignored
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Duplicate:
		return "duplicate"
	case Suppressed:
		return "suppressed"
	default:
		return "ignored"
	}
}

type Stats struct {
	Captures   int64
	Analyses   int64
	Failures   int64
	Suppressed int64
	Duplicates int64
}

// State is a copy of everything the Machine owns. Feedback is never mutated
// in place, so sharing the pointer is safe.
type State struct {
	System          types.SystemState
	Feedback        *types.Feedback
	RawAnalysisText string
	Voice           types.VoicePreference
	Failure         string
	FailureCategory string
	// PendingFailure is a capability failure reported while an analysis
	// was running. It becomes Failure once the analysis resolves.
	PendingFailure string
	Transcript      string
	LastCaptureID   string
	LastEventID     string
	InFlight        bool
	Stats           Stats
}

// Machine is the single writer of session state. Events are applied one at
// a time; at most one analysis runs at once and captures arriving meanwhile
// are dropped.
type Machine struct {
	analyzer Analyzer
	timeout  time.Duration
	log      *slog.Logger

	mu             sync.Mutex
	state          types.SystemState
	feedback       *types.Feedback
	raw            string
	voice          types.VoicePreference
	failure        string
	category       string
	pendingFailure error
	transcript     string
	lastCaptureID  string
	lastEventID    string
	inFlight       bool
	stats          Stats
	seen           *recentIDs

	notifyMu sync.Mutex
	subs     []func(State)

	wg sync.WaitGroup
}

type Option func(*Machine)

func WithDedupWindow(n int) Option {
	return func(m *Machine) { m.seen = newRecentIDs(n) }
}

func WithAnalysisTimeout(d time.Duration) Option {
	return func(m *Machine) { m.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// WithVoice sets the initial voice preference. Enabled is dropped when
// voice is not supported.
func WithVoice(p types.VoicePreference) Option {
	return func(m *Machine) {
		p.Enabled = p.Enabled && p.Supported
		m.voice = p
	}
}

func New(a Analyzer, opts ...Option) *Machine {
	m := &Machine{
		analyzer: a,
		timeout:  45 * time.Second,
		log:      slog.Default(),
		voice:    types.VoicePreference{Supported: true},
		seen:     newRecentIDs(32),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.state = m.idleState()
	return m
}

// Subscribe registers fn to be called after every applied transition,
// including the asynchronous end of an analysis. Calls are serialized and
// always carry the latest state. fn must not call Handle.
func (m *Machine) Subscribe(fn func(State)) {
	m.notifyMu.Lock()
	m.subs = append(m.subs, fn)
	m.notifyMu.Unlock()
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Wait blocks until no analysis is running.
func (m *Machine) Wait() { m.wg.Wait() }

// Handle applies one event. A capture accepted here starts the analysis in
// the background; Handle itself never blocks on it.
func (m *Machine) Handle(ctx context.Context, ev Event) Outcome {
	m.mu.Lock()
	out := m.applyLocked(ctx, ev)
	m.mu.Unlock()

	m.log.Debug("event handled", "id", ev.EventID(), "outcome", out.String())
	if out == Applied {
		m.notify()
	}
	return out
}

// Drop records ev as seen without applying it, for triggers rejected before
// reaching the machine. A later redelivery is then reported as Duplicate.
func (m *Machine) Drop(ev Event) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id := ev.EventID(); id != "" {
		if m.seen.Seen(id) {
			m.stats.Duplicates++
			return Duplicate
		}
		m.seen.Add(id)
		m.lastEventID = id
	}
	m.stats.Suppressed++
	return Suppressed
}

func (m *Machine) applyLocked(ctx context.Context, ev Event) Outcome {
	if id := ev.EventID(); id != "" {
		if m.seen.Seen(id) {
			m.stats.Duplicates++
			return Duplicate
		}
		m.seen.Add(id)
		m.lastEventID = id
	}

	switch e := ev.(type) {
	case CaptureEvent:
		return m.captureLocked(ctx, e)
	case ControlEvent:
		return m.controlLocked(e)
	default:
		return Ignored
	}
}

func (m *Machine) captureLocked(ctx context.Context, e CaptureEvent) Outcome {
	if m.inFlight {
		m.stats.Suppressed++
		m.log.Info("capture suppressed while processing", "id", e.ID, "source", e.Source)
		return Suppressed
	}
	m.inFlight = true
	m.state = types.StateProcessing
	m.lastCaptureID = e.ID
	m.failure, m.category, m.pendingFailure = "", "", nil
	m.stats.Captures++

	m.wg.Add(1)
	go m.run(ctx, e)
	m.log.Info("capture accepted", "id", e.ID, "source", e.Source)
	return Applied
}

func (m *Machine) run(ctx context.Context, e CaptureEvent) {
	defer m.wg.Done()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()

	fb, raw, err := m.analyzer.AnalyzeCapture(ctx, e.Image)
	m.finish(e.ID, fb, raw, err)
}

func (m *Machine) finish(id string, fb types.Feedback, raw string, err error) {
	m.mu.Lock()
	m.inFlight = false
	m.raw = raw
	switch {
	case err != nil:
		m.stats.Failures++
		m.state = types.StateError
		m.failure = analysis.FailureMessage(err)
		m.category = analysis.Category(err)
		m.log.Warn("analysis failed", "id", id, "category", m.category, "err", err)
	default:
		m.stats.Analyses++
		m.feedback = &fb
		m.state = m.idleState()
		m.log.Info("analysis applied", "id", id, "asana", fb.AsanaName)
	}
	if m.pendingFailure != nil && err == nil {
		m.state = types.StateError
		m.failure = analysis.FailureMessage(m.pendingFailure)
		m.category = analysis.Category(m.pendingFailure)
	}
	m.pendingFailure = nil
	m.mu.Unlock()

	m.notify()
}

func (m *Machine) controlLocked(e ControlEvent) Outcome {
	switch e.Kind {
	case KindToggleVoice:
		enable := !m.voice.Enabled
		if e.Enable != nil {
			enable = *e.Enable
		}
		if enable && !m.voice.Supported {
			return Ignored
		}
		m.voice.Enabled = enable
		if !m.inFlight {
			m.state = m.idleState()
			m.failure, m.category = "", ""
		}
	case KindVoiceUnsupported:
		m.voice = types.VoicePreference{Enabled: false, Supported: false}
		if !m.inFlight {
			m.state = types.StateReady
			m.failure, m.category = "", ""
		}
	case KindVoiceError:
		m.voice.Enabled = false
		m.failLocked(capabilityError("Voice recognition", e.Message))
	case KindCameraError:
		m.failLocked(capabilityError("Camera", e.Message))
	case KindCaptureError:
		m.failLocked(capabilityError("Capture", e.Message))
	case KindVoiceTranscript:
		m.transcript = e.Text
	default:
		return Ignored
	}
	return Applied
}

// failLocked records a capability failure. While an analysis is running the
// failure is held back so the processing state stays truthful; it is applied
// once the analysis resolves. Until then it is exposed as PendingFailure.
func (m *Machine) failLocked(err error) {
	if m.inFlight {
		m.pendingFailure = err
		return
	}
	m.state = types.StateError
	m.failure = analysis.FailureMessage(err)
	m.category = analysis.Category(err)
}

func (m *Machine) idleState() types.SystemState {
	if m.voice.Enabled {
		return types.StateListening
	}
	return types.StateReady
}

func (m *Machine) stateLocked() State {
	var pending string
	if m.pendingFailure != nil {
		pending = analysis.FailureMessage(m.pendingFailure)
	}
	return State{
		System:          m.state,
		Feedback:        m.feedback,
		RawAnalysisText: m.raw,
		Voice:           m.voice,
		Failure:         m.failure,
		FailureCategory: m.category,
		PendingFailure:  pending,
		Transcript:      m.transcript,
		LastCaptureID:   m.lastCaptureID,
		LastEventID:     m.lastEventID,
		InFlight:        m.inFlight,
		Stats:           m.stats,
	}
}

func (m *Machine) notify() {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	st := m.State()
	for _, fn := range m.subs {
		fn(st)
	}
}

func capabilityError(what, detail string) error {
	if detail == "" {
		return &analysis.CapabilityError{Msg: what + " is unavailable."}
	}
	return &analysis.CapabilityError{Msg: what + " error: " + detail}
}

// Package trigger decides which raw signals become capture attempts.
package trigger

import (
	"log/slog"

	"github.com/steveyiyo/asanasense-backend/internal/core/orchestrator"
	"github.com/steveyiyo/asanasense-backend/pkg/types"
)

// Camera yields the most recent frame as a data-URI payload.
type Camera interface {
	Latest() (string, error)
}

// Decision is what one heard utterance produces. Transcript is always set;
// at most one of Capture and Failure is.
type Decision struct {
	Transcript orchestrator.ControlEvent
	Matched    bool
	Capture    *orchestrator.CaptureEvent
	Failure    *orchestrator.ControlEvent
}

type Arbiter struct {
	wake   *WakeWord
	camera Camera
	log    *slog.Logger
}

func NewArbiter(wake *WakeWord, camera Camera, log *slog.Logger) *Arbiter {
	if log == nil {
		log = slog.Default()
	}
	return &Arbiter{wake: wake, camera: camera, log: log}
}

// Hear evaluates one recognized utterance against the current state.
func (a *Arbiter) Hear(utterance string, st orchestrator.State) Decision {
	tr := orchestrator.NewControl(orchestrator.KindVoiceTranscript)
	tr.Text = utterance
	d := Decision{Transcript: tr, Matched: a.wake.Match(utterance)}
	if !d.Matched {
		return d
	}
	if !st.Voice.Enabled || busy(st) {
		a.log.Debug("wake word ignored", "state", st.System, "voice_enabled", st.Voice.Enabled)
		return d
	}

	frame, err := a.camera.Latest()
	if err != nil {
		f := orchestrator.NewControl(orchestrator.KindCaptureError)
		f.Message = err.Error()
		d.Failure = &f
		return d
	}
	c := orchestrator.NewCapture(orchestrator.SourceVoice, frame)
	d.Capture = &c
	a.log.Info("wake word matched", "utterance", utterance, "capture_id", c.ID)
	return d
}

// Admit reports whether a capture coming straight from the client may be
// handed to the machine.
func (a *Arbiter) Admit(ev orchestrator.CaptureEvent, st orchestrator.State) bool {
	if busy(st) {
		a.log.Info("capture rejected while processing", "id", ev.ID, "source", ev.Source)
		return false
	}
	return true
}

func busy(st orchestrator.State) bool {
	return st.InFlight || st.System == types.StateProcessing
}

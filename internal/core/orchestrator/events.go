package orchestrator

import (
	"time"

	"github.com/google/uuid"
)

type Source string

const (
	SourceVoice  Source = "voice"
	SourceManual Source = "manual"
)

type ControlKind string

const (
	KindToggleVoice      ControlKind = "toggle_voice"
	KindVoiceUnsupported ControlKind = "voice_unsupported"
	KindVoiceError       ControlKind = "voice_error"
	KindCameraError      ControlKind = "camera_error"
	KindCaptureError     ControlKind = "capture_error"
	KindVoiceTranscript  ControlKind = "voice_transcript"
)

func (k ControlKind) Valid() bool {
	switch k {
	case KindToggleVoice, KindVoiceUnsupported, KindVoiceError, KindCameraError, KindCaptureError, KindVoiceTranscript:
		return true
	}
	return false
}

// Event is anything the Machine consumes. Every event carries an id used
// for redelivery detection.
type Event interface {
	EventID() string
}

// CaptureEvent requests analysis of one captured frame.
type CaptureEvent struct {
	ID        string
	Source    Source
	Image     string
	Timestamp time.Time
}

func (e CaptureEvent) EventID() string { return e.ID }

type ControlEvent struct {
	ID   string
	Kind ControlKind
	// Enable is the requested voice state for toggle_voice; nil flips it.
	Enable *bool
	// Message carries the failure detail for error kinds.
	Message string
	// Text carries the heard utterance for voice_transcript.
	Text      string
	Timestamp time.Time
}

func (e ControlEvent) EventID() string { return e.ID }

func NewEventID() string { return "evt_" + uuid.NewString() }

func NewCapture(source Source, image string) CaptureEvent {
	return CaptureEvent{ID: NewEventID(), Source: source, Image: image, Timestamp: time.Now()}
}

func NewControl(kind ControlKind) ControlEvent {
	return ControlEvent{ID: NewEventID(), Kind: kind, Timestamp: time.Now()}
}

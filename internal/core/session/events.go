package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/steveyiyo/asanasense-backend/internal/core/orchestrator"
	"github.com/steveyiyo/asanasense-backend/pkg/types"
)

var (
	ErrMissingEventID = errors.New("event id is required")
	ErrUnknownEvent   = errors.New("unknown event type")
)

const TypeCapture = "capture"

// DecodeEvent converts the presentation layer's event object into a machine
// event.
func DecodeEvent(req types.EventReq) (orchestrator.Event, error) {
	if req.ID == "" {
		return nil, ErrMissingEventID
	}
	now := time.Now()
	if req.Type == TypeCapture {
		src := orchestrator.SourceManual
		switch orchestrator.Source(req.Source) {
		case orchestrator.SourceVoice:
			src = orchestrator.SourceVoice
		case orchestrator.SourceManual, "":
		default:
			return nil, fmt.Errorf("%w: capture source %q", ErrUnknownEvent, req.Source)
		}
		return orchestrator.CaptureEvent{ID: req.ID, Source: src, Image: req.Image, Timestamp: now}, nil
	}

	kind := orchestrator.ControlKind(req.Type)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, req.Type)
	}
	return orchestrator.ControlEvent{
		ID:        req.ID,
		Kind:      kind,
		Enable:    req.Enabled,
		Message:   req.Message,
		Text:      req.Text,
		Timestamp: now,
	}, nil
}

// Package camera holds the most recent frame pushed by the client's camera,
// so voice triggers can capture without a round trip.
package camera

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrNoFrame    = errors.New("no camera frame received yet")
	ErrStaleFrame = errors.New("latest camera frame is too old")
)

// FrameBuffer is a single-slot mailbox: every Store overwrites the previous
// frame.
type FrameBuffer struct {
	maxAge time.Duration

	mu    sync.RWMutex
	frame string
	at    time.Time
}

// NewFrameBuffer returns a buffer that refuses frames older than maxAge.
// A zero maxAge accepts frames of any age.
func NewFrameBuffer(maxAge time.Duration) *FrameBuffer {
	return &FrameBuffer{maxAge: maxAge}
}

func (b *FrameBuffer) Store(payload string) {
	b.mu.Lock()
	b.frame = payload
	b.at = time.Now()
	b.mu.Unlock()
}

func (b *FrameBuffer) Latest() (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.frame == "" {
		return "", ErrNoFrame
	}
	if b.maxAge > 0 && time.Since(b.at) > b.maxAge {
		return "", ErrStaleFrame
	}
	return b.frame, nil
}

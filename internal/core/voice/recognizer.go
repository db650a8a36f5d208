// Package voice adapts speech recognition into a supervised background
// listener the session can pause and resume.
package voice

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by a Recognizer that can never work in this
// environment. The listener stops for good when it sees it.
var ErrUnsupported = errors.New("voice recognition unsupported")

type Recognizer interface {
	// RecognizeUtterance blocks until one utterance is heard.
	RecognizeUtterance(ctx context.Context) (string, error)
}

// Drainer is implemented by recognizers that can hold utterances heard
// while the listener was paused. The listener drains them on resume.
type Drainer interface {
	Drain()
}

// FeedRecognizer is a Recognizer fed by the transport: the client does the
// speech-to-text and pushes transcripts. Only the newest unread transcript
// is kept.
type FeedRecognizer struct {
	ch chan string
}

func NewFeedRecognizer() *FeedRecognizer {
	return &FeedRecognizer{ch: make(chan string, 1)}
}

// Push never blocks; an unread older transcript is replaced.
func (f *FeedRecognizer) Push(text string) {
	for {
		select {
		case f.ch <- text:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// Drain discards an unread transcript.
func (f *FeedRecognizer) Drain() {
	select {
	case <-f.ch:
	default:
	}
}

func (f *FeedRecognizer) RecognizeUtterance(ctx context.Context) (string, error) {
	select {
	case t := <-f.ch:
		return t, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

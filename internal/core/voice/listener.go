package voice

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Listener keeps calling a Recognizer while active and hands every
// utterance to a sink. It replaces a self-rearming recognition callback with
// an explicit Start / SetActive / Stop surface.
type Listener struct {
	rec     Recognizer
	sink    func(ctx context.Context, text string)
	onError func(ctx context.Context, err error)
	backoff time.Duration
	log     *slog.Logger

	mu     sync.Mutex
	active bool
	wake   chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

type ListenerOption func(*Listener)

// WithErrorHandler is called on every recognition failure, including
// ErrUnsupported right before the listener exits.
func WithErrorHandler(fn func(ctx context.Context, err error)) ListenerOption {
	return func(l *Listener) { l.onError = fn }
}

func WithBackoff(d time.Duration) ListenerOption {
	return func(l *Listener) { l.backoff = d }
}

func WithListenerLogger(log *slog.Logger) ListenerOption {
	return func(l *Listener) { l.log = log }
}

func NewListener(rec Recognizer, sink func(ctx context.Context, text string), opts ...ListenerOption) *Listener {
	l := &Listener{
		rec:     rec,
		sink:    sink,
		onError: func(context.Context, error) {},
		backoff: 500 * time.Millisecond,
		log:     slog.Default(),
		wake:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start launches the supervision loop. The listener starts paused.
func (l *Listener) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done != nil {
		return
	}
	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	go l.loop(ctx, l.done)
}

// SetActive resumes (true) or pauses (false) recognition.
func (l *Listener) SetActive(active bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == active {
		return
	}
	l.active = active
	if active {
		if d, ok := l.rec.(Drainer); ok {
			d.Drain()
		}
		close(l.wake)
	} else {
		l.wake = make(chan struct{})
	}
}

func (l *Listener) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Stop ends the loop and waits for it to exit.
func (l *Listener) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Listener) waitActive(ctx context.Context) bool {
	l.mu.Lock()
	wake := l.wake
	l.mu.Unlock()
	select {
	case <-wake:
		return true
	case <-ctx.Done():
		return false
	}
}

func (l *Listener) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		if !l.waitActive(ctx) {
			return
		}
		text, err := l.rec.RecognizeUtterance(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			l.onError(ctx, err)
			if errors.Is(err, ErrUnsupported) {
				l.log.Warn("voice recognition unsupported, listener stopped")
				return
			}
			l.log.Warn("voice recognition failed", "err", err)
			select {
			case <-time.After(l.backoff):
			case <-ctx.Done():
				return
			}
			continue
		}
		// Utterances finishing after a pause are dropped.
		if text == "" || !l.Active() {
			continue
		}
		l.sink(ctx, text)
	}
}

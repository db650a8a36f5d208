package voice

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func collect(t *testing.T) (func(context.Context, string), <-chan string) {
	t.Helper()
	ch := make(chan string, 8)
	return func(_ context.Context, text string) { ch <- text }, ch
}

func expectText(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("heard %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func expectNothing(t *testing.T, ch <-chan string) {
	t.Helper()
	select {
	case got := <-ch:
		t.Fatalf("unexpected utterance %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFeedRecognizerKeepsNewest(t *testing.T) {
	f := NewFeedRecognizer()
	f.Push("one")
	f.Push("two")
	got, err := f.RecognizeUtterance(context.Background())
	if err != nil || got != "two" {
		t.Fatalf("RecognizeUtterance = %q, %v", got, err)
	}

	f.Push("stale")
	f.Drain()
	f.Push("fresh")
	if got, _ := f.RecognizeUtterance(context.Background()); got != "fresh" {
		t.Fatalf("after Drain got %q, want fresh", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.RecognizeUtterance(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestListenerDeliversOnlyWhileActive(t *testing.T) {
	feed := NewFeedRecognizer()
	sink, heard := collect(t)
	l := NewListener(feed, sink)
	l.Start(context.Background())
	defer l.Stop()

	feed.Push("while paused")
	expectNothing(t, heard)

	l.SetActive(true)
	expectNothing(t, heard)

	feed.Push("hello")
	expectText(t, heard, "hello")

	l.SetActive(false)
	feed.Push("dropped")
	expectNothing(t, heard)
}

type scriptedRecognizer struct {
	calls atomic.Int32
	errs  []error
}

func (s *scriptedRecognizer) RecognizeUtterance(ctx context.Context) (string, error) {
	n := int(s.calls.Add(1)) - 1
	if n < len(s.errs) {
		return "", s.errs[n]
	}
	<-ctx.Done()
	return "", ctx.Err()
}

func TestListenerRestartsAfterErrors(t *testing.T) {
	rec := &scriptedRecognizer{errs: []error{errors.New("no-speech"), errors.New("aborted")}}
	errs := make(chan error, 4)
	l := NewListener(rec, func(context.Context, string) {},
		WithBackoff(time.Millisecond),
		WithErrorHandler(func(_ context.Context, err error) { errs <- err }),
	)
	l.Start(context.Background())
	l.SetActive(true)

	for i := 0; i < 2; i++ {
		select {
		case <-errs:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for error")
		}
	}
	l.Stop()
	if got := rec.calls.Load(); got < 3 {
		t.Fatalf("recognizer calls = %d, want restart after each error", got)
	}
}

func TestListenerStopsOnUnsupported(t *testing.T) {
	rec := &scriptedRecognizer{errs: []error{ErrUnsupported}}
	errs := make(chan error, 1)
	l := NewListener(rec, func(context.Context, string) {},
		WithErrorHandler(func(_ context.Context, err error) { errs <- err }),
	)
	l.Start(context.Background())
	l.SetActive(true)

	select {
	case err := <-errs:
		if !errors.Is(err, ErrUnsupported) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
	l.Stop()
	if got := rec.calls.Load(); got != 1 {
		t.Fatalf("recognizer calls = %d, want 1", got)
	}
}

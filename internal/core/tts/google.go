package tts

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
)

type Options struct {
	Voice  string
	Format string
	Speed  float32
	Pitch  float32
}

type Provider interface {
	Synthesize(ctx context.Context, text string, opts Options) (url string, durMs int64, err error)
}

// GoogleStub hands out content-addressed audio URLs under Base; the audio
// itself is rendered by the TTS edge behind that base URL.
type GoogleStub struct {
	Base string
}

func NewGoogleStub(base string) *GoogleStub {
	return &GoogleStub{Base: strings.TrimRight(base, "/")}
}

func (g *GoogleStub) Synthesize(ctx context.Context, text string, opts Options) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", 0, errors.New("tts: empty text")
	}
	if opts.Format == "" {
		opts.Format = "mp3"
	}
	h := sha1.New()
	h.Write([]byte(text + opts.Voice + opts.Format))
	key := hex.EncodeToString(h.Sum(nil))[:16]
	return g.Base + "/" + key + "." + opts.Format, estimateMs(text, opts.Speed), nil
}

// estimateMs assumes about 150 spoken words per minute at speed 1.
func estimateMs(text string, speed float32) int64 {
	if speed <= 0 {
		speed = 1
	}
	words := len(strings.Fields(text))
	return int64(float32(words*400) / speed)
}

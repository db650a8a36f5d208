package analysis

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"strings"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxEdge = 768
	DefaultQuality = 85
	MIMEType       = "image/jpeg"
)

type NormalizeOptions struct {
	MaxEdge int
	Quality int
}

func (o NormalizeOptions) withDefaults() NormalizeOptions {
	if o.MaxEdge <= 0 {
		o.MaxEdge = DefaultMaxEdge
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// DecodePayload strips a data-URI header ("data:image/...;base64,") when
// present and base64-decodes the rest.
func DecodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		i := strings.IndexByte(payload, ',')
		if i < 0 {
			return nil, fmt.Errorf("%w: data uri without comma", ErrDecode)
		}
		payload = payload[i+1:]
	}
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if raw, err2 := base64.RawStdEncoding.DecodeString(payload); err2 == nil {
			return raw, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return raw, nil
}

// NormalizeImage decodes raw, flattens it onto an opaque RGB canvas, shrinks
// it so the longer edge is at most MaxEdge and re-encodes it as JPEG.
func NormalizeImage(raw []byte, opts NormalizeOptions) ([]byte, error) {
	opts = opts.withDefaults()
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}

	w, h := fitLongEdge(b.Dx(), b.Dy(), opts.MaxEdge)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return buf.Bytes(), nil
}

func fitLongEdge(w, h, maxEdge int) (int, int) {
	long := max(w, h)
	if long <= maxEdge {
		return w, h
	}
	scale := float64(maxEdge) / float64(long)
	nw := int(float64(w)*scale + 0.5)
	nh := int(float64(h)*scale + 0.5)
	if w >= h {
		nw = maxEdge
	} else {
		nh = maxEdge
	}
	return max(nw, 1), max(nh, 1)
}

package analysis

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 7 {
		for x := 0; x < w; x += 5 {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeImageDownscalesLongEdge(t *testing.T) {
	out, err := NormalizeImage(pngBytes(t, 2000, 1000), NormalizeOptions{})
	if err != nil {
		t.Fatalf("NormalizeImage: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not jpeg: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 768 {
		t.Fatalf("width = %d, want 768", b.Dx())
	}
	if b.Dy() != 384 {
		t.Fatalf("height = %d, want 384", b.Dy())
	}
}

func TestNormalizeImagePortraitAndSmall(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{w: 900, h: 1600, wantW: 432, wantH: 768},
		{w: 640, h: 480, wantW: 640, wantH: 480},
		{w: 768, h: 768, wantW: 768, wantH: 768},
	}
	for _, tc := range tests {
		out, err := NormalizeImage(pngBytes(t, tc.w, tc.h), NormalizeOptions{})
		if err != nil {
			t.Fatalf("NormalizeImage(%dx%d): %v", tc.w, tc.h, err)
		}
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("decode config: %v", err)
		}
		if cfg.Width != tc.wantW || cfg.Height != tc.wantH {
			t.Fatalf("%dx%d -> %dx%d, want %dx%d", tc.w, tc.h, cfg.Width, cfg.Height, tc.wantW, tc.wantH)
		}
	}
}

func TestNormalizeImageRejectsGarbage(t *testing.T) {
	_, err := NormalizeImage([]byte("definitely not an image"), NormalizeOptions{})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if Category(err) != CategoryDecode {
		t.Fatalf("category = %q", Category(err))
	}
}

func TestDecodePayloadStripsDataURIHeader(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5}
	enc := base64.StdEncoding.EncodeToString(raw)

	for _, in := range []string{"data:image/jpeg;base64," + enc, enc, "  data:image/png;base64," + enc + "\n"} {
		got, err := DecodePayload(in)
		if err != nil {
			t.Fatalf("DecodePayload(%q): %v", in, err)
		}
		if !bytes.Equal(got, raw) {
			t.Fatalf("DecodePayload(%q) = %v, want %v", in, got, raw)
		}
	}
}

func TestDecodePayloadErrors(t *testing.T) {
	for _, in := range []string{"", "data:image/png;base64", "data:image/png;base64,!!!"} {
		if _, err := DecodePayload(in); !errors.Is(err, ErrDecode) {
			t.Fatalf("DecodePayload(%q) err = %v, want ErrDecode", in, err)
		}
	}
}

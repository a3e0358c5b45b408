package storage

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func decodedBounds(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not valid JPEG: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestProcessAttachmentReencodesAsJPEG(t *testing.T) {
	src := encodePNG(t, 200, 100)

	out, contentType, size, err := ProcessAttachmentImage(bytes.NewReader(src), DefaultAttachmentOptions())
	if err != nil {
		t.Fatalf("ProcessAttachmentImage failed: %v", err)
	}
	if contentType != "image/jpeg" {
		t.Errorf("content type = %q, want image/jpeg", contentType)
	}
	if size != int64(len(out)) {
		t.Errorf("reported size %d != payload size %d", size, len(out))
	}
	if w, h := decodedBounds(t, out); w != 200 || h != 100 {
		t.Errorf("small images must keep their dimensions, got %dx%d", w, h)
	}
}

func TestProcessAttachmentDownscales(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		maxDim int
		wantW  int
		wantH  int
	}{
		{"wide landscape", 800, 200, 400, 400, 100},
		{"tall portrait", 200, 800, 400, 100, 400},
		{"square", 500, 500, 250, 250, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := encodePNG(t, tt.w, tt.h)
			opts := ImageProcessOptions{MaxBytes: 8 * 1024 * 1024, MaxDim: tt.maxDim, JPEGQuality: 82}

			out, _, _, err := ProcessAttachmentImage(bytes.NewReader(src), opts)
			if err != nil {
				t.Fatalf("ProcessAttachmentImage failed: %v", err)
			}
			if w, h := decodedBounds(t, out); w != tt.wantW || h != tt.wantH {
				t.Errorf("got %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestProcessAttachmentRejectsOversized(t *testing.T) {
	src := encodePNG(t, 64, 64)
	opts := ImageProcessOptions{MaxBytes: 16, MaxDim: 1600, JPEGQuality: 82}

	if _, _, _, err := ProcessAttachmentImage(bytes.NewReader(src), opts); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestProcessAttachmentRejectsNonImages(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrInvalidImage},
		{"too short", []byte{0x89, 'P'}, ErrInvalidImage},
		{"gif magic", []byte("GIF89a-not-allowed-here"), ErrUnsupported},
		{"plain text", []byte("definitely not an image file"), ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := ProcessAttachmentImage(bytes.NewReader(tt.data), DefaultAttachmentOptions())
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestProcessAttachmentRejectsCorruptBody(t *testing.T) {
	// Valid PNG magic, garbage body.
	data := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, []byte("garbage body bytes")...)
	if _, _, _, err := ProcessAttachmentImage(bytes.NewReader(data), DefaultAttachmentOptions()); err == nil {
		t.Error("expected a decode error")
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		w, h, maxDim int
		wantW, wantH int
	}{
		{"no upscale", 100, 50, 1600, 100, 50},
		{"exact fit", 1600, 1600, 1600, 1600, 1600},
		{"landscape", 3200, 1600, 1600, 1600, 800},
		{"portrait", 1600, 3200, 1600, 800, 1600},
		{"extreme ratio floors at 1", 10000, 2, 100, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fitWithin(tt.w, tt.h, tt.maxDim)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("fitWithin(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.w, tt.h, tt.maxDim, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestSafeObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		key     string
		want    string
		wantErr bool
	}{
		{"plain", "attachments", "photo.jpg", "attachments/photo.jpg", false},
		{"leading slash stripped", "attachments", "/photo.jpg", "attachments/photo.jpg", false},
		{"no prefix", "", "photo.jpg", "photo.jpg", false},
		{"nested path", "attachments", "2025/06/photo.jpg", "attachments/2025/06/photo.jpg", false},
		{"traversal", "attachments", "../secrets.txt", "", true},
		{"embedded traversal", "attachments", "a/../../b", "", true},
		{"backslash", "attachments", "a\\b", "", true},
		{"empty", "attachments", "", "", true},
		{"whitespace only", "attachments", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeObjectKey(tt.prefix, tt.key)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected an error, got key %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("SafeObjectKey failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

package kndweb

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestProcessImage(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		file         string
		wantW, wantH int
		wantName     string
	}{
		{"small kept", 400, 300, "Shop Floor.png", 400, 300, "shop-floor.jpg"},
		{"wide resized", 3200, 1600, "panorama.PNG", maxImageWidth, 800, "panorama.jpg"},
		{"unsluggable name", 10, 10, "!!!.png", 10, 10, "image.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, data, err := processImage(bytes.NewReader(pngBytes(t, tt.w, tt.h)), tt.file)
			if err != nil {
				t.Fatalf("processImage: %v", err)
			}
			if meta.Width != tt.wantW || meta.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", meta.Width, meta.Height, tt.wantW, tt.wantH)
			}
			if meta.Filename != tt.wantName {
				t.Errorf("Filename = %q, want %q", meta.Filename, tt.wantName)
			}
			if meta.Size != len(data) {
				t.Errorf("Size = %d, encoded %d bytes", meta.Size, len(data))
			}
			if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err != nil || format != "jpeg" {
				t.Errorf("output format = %q, err %v", format, err)
			}
		})
	}
}

func TestProcessImageRejects(t *testing.T) {
	if _, _, err := processImage(bytes.NewReader(pngBytes(t, 4, 4)), "doc.pdf"); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("pdf: err = %v, want ErrUnsupportedImage", err)
	}
	if _, _, err := processImage(bytes.NewReader([]byte("not an image")), "fake.png"); err == nil {
		t.Error("expected decode error for garbage input")
	}
}

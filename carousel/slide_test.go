package carousel

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kindanddivine/kndweb/api"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    Position
		wantErr bool
	}{
		{"top", PositionTop, false},
		{" Bottom ", PositionBottom, false},
		{"middle", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePosition(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePosition(%q) err = %v", tt.in, err)
		}
		if err != nil && !errors.Is(err, ErrUnknownPosition) {
			t.Errorf("ParsePosition(%q) err = %v, want ErrUnknownPosition", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParsePosition(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeRotation(t *testing.T) {
	tests := []struct {
		in   int
		want int
		ok   bool
	}{
		{0, 0, true},
		{90, 90, true},
		{270, 270, true},
		{450, 90, true},
		{-90, 270, true},
		{45, 0, false},
		{181, 0, false},
	}
	for _, tt := range tests {
		got, ok := NormalizeRotation(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizeRotation(%d) = %d,%v want %d,%v", tt.in, got, ok, tt.want, tt.ok)
		}
		if !ValidRotation(got) {
			t.Errorf("NormalizeRotation(%d) produced invalid %d", tt.in, got)
		}
	}
}

func TestNormalizeDefaults(t *testing.T) {
	s, err := Normalize(api.Carousel{ID: 3, Title: "Gear", ImageURL: " /uploads/gear.jpg ", Rotation: 33})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.ID == nil || *s.ID != 3 {
		t.Errorf("ID = %v", s.ID)
	}
	if s.ImageURL != "/uploads/gear.jpg" {
		t.Errorf("ImageURL = %q", s.ImageURL)
	}
	if s.Rotation != 0 || s.Description != "" || s.IntrinsicWidth != 0 || s.IntrinsicHeight != 0 {
		t.Errorf("defaults not applied: %+v", s)
	}

	if _, err := Normalize(api.Carousel{Title: "No image"}); !errors.Is(err, ErrNoImage) {
		t.Errorf("err = %v, want ErrNoImage", err)
	}
}

func TestDefaultSlidesAreFreshCopies(t *testing.T) {
	a := DefaultSlides()
	a[0].Title = "changed"
	b := DefaultSlides()
	if b[0].Title != "AR Precision Parts" {
		t.Fatalf("DefaultSlides shares state: %q", b[0].Title)
	}
}

type fakeSource struct {
	mu      sync.Mutex
	records map[string][]api.Carousel
	errs    map[string]error
	delay   map[string]time.Duration
	calls   []string
}

func (f *fakeSource) Carousels(ctx context.Context, position string) ([]api.Carousel, error) {
	f.mu.Lock()
	f.calls = append(f.calls, position)
	d := f.delay[position]
	f.mu.Unlock()
	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.records[position], f.errs[position]
}

func TestLoaderFallbackOnTopFailure(t *testing.T) {
	src := &fakeSource{
		errs: map[string]error{"top": errors.New("connection refused")},
		records: map[string][]api.Carousel{
			"bottom": {{ID: 1, Title: "A", ImageURL: "/a.jpg"}},
		},
	}
	got := NewLoader(src, nil).Load(context.Background())

	if !got.Top.Fallback {
		t.Error("top should fall back")
	}
	want := DefaultSlides()
	if len(got.Top.Slides) != len(want) {
		t.Fatalf("top slides = %d, want %d", len(got.Top.Slides), len(want))
	}
	for i := range want {
		s := got.Top.Slides[i]
		if s.Title != want[i].Title || s.ImageURL != want[i].ImageURL || s.Rotation != 0 {
			t.Errorf("top[%d] = %+v", i, s)
		}
	}
	if got.Bottom.Empty || len(got.Bottom.Slides) != 1 {
		t.Errorf("bottom should be unaffected: %+v", got.Bottom)
	}
}

func TestLoaderEmptyStates(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
	}{
		{"both empty", &fakeSource{}},
		{"bottom fails", &fakeSource{
			records: map[string][]api.Carousel{},
			errs:    map[string]error{"bottom": &api.APIError{Status: 500}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLoader(tt.src, nil).Load(context.Background())
			if !got.Top.Fallback || len(got.Top.Slides) != 3 {
				t.Errorf("top = %+v", got.Top)
			}
			if !got.Bottom.Empty || len(got.Bottom.Slides) != 0 {
				t.Errorf("bottom = %+v", got.Bottom)
			}
			if !strings.Contains(EmptyStripMessage, "No solution images configured yet") {
				t.Errorf("unexpected empty message %q", EmptyStripMessage)
			}
		})
	}
}

func TestLoaderFetchesConcurrently(t *testing.T) {
	src := &fakeSource{
		delay: map[string]time.Duration{"top": 150 * time.Millisecond, "bottom": 150 * time.Millisecond},
		records: map[string][]api.Carousel{
			"top":    {{ID: 1, Title: "T", ImageURL: "/t.jpg"}},
			"bottom": {{ID: 2, Title: "B", ImageURL: "/b.jpg"}},
		},
	}
	start := time.Now()
	got := NewLoader(src, nil).Load(context.Background())
	if elapsed := time.Since(start); elapsed > 280*time.Millisecond {
		t.Errorf("fetches look sequential: %v", elapsed)
	}
	if got.Top.Fallback || got.Top.Slides[0].Title != "T" {
		t.Errorf("top = %+v", got.Top)
	}
	if got.Bottom.Slides[0].Position != PositionBottom {
		t.Errorf("bottom position = %q", got.Bottom.Slides[0].Position)
	}
}

func TestLoaderKeepsFetchOrderAndSkipsBadRecords(t *testing.T) {
	src := &fakeSource{records: map[string][]api.Carousel{
		"bottom": {
			{ID: 5, Title: "E", ImageURL: "/e.jpg", SortOrder: 9},
			{ID: 6, Title: "broken"},
			{ID: 1, Title: "A", ImageURL: "/a.jpg", SortOrder: 1, Rotation: 90},
		},
	}}
	got := NewLoader(src, nil).LoadPosition(context.Background(), PositionBottom)
	if len(got.Slides) != 2 {
		t.Fatalf("slides = %d, want 2", len(got.Slides))
	}
	if got.Slides[0].Title != "E" || got.Slides[1].Title != "A" {
		t.Errorf("order changed: %q, %q", got.Slides[0].Title, got.Slides[1].Title)
	}
	if got.Slides[1].Rotation != 90 {
		t.Errorf("rotation = %d", got.Slides[1].Rotation)
	}
}

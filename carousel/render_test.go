package carousel

import (
	"strings"
	"testing"
)

func slidesFrom(titles ...string) []Slide {
	out := make([]Slide, len(titles))
	for i, title := range titles {
		id := i + 1
		out[i] = Slide{ID: &id, Title: title, ImageURL: "/" + title + ".jpg"}
	}
	return out
}

func TestRenderListDuplicatesInOrder(t *testing.T) {
	slides := slidesFrom("A", "B", "C", "D", "E", "F")
	items := RenderList(slides)

	var titles []string
	for _, it := range items {
		titles = append(titles, it.Slide.Title)
	}
	want := "A,B,C,D,E,F,A,B,C,D,E,F"
	if got := strings.Join(titles, ","); got != want {
		t.Errorf("render list = %s, want %s", got, want)
	}
	if got := TotalWidth(len(slides)); got != 1656 {
		t.Errorf("total width = %v, want 1656", got)
	}
}

func TestRenderListKeysAreUnique(t *testing.T) {
	slides := slidesFrom("A", "B", "C", "D", "E")
	slides[4].ID = nil
	items := RenderList(slides)
	seen := map[string]bool{}
	for _, it := range items {
		if seen[it.Key] {
			t.Fatalf("duplicate key %q", it.Key)
		}
		seen[it.Key] = true
	}
	if items[0].Key != "1-0" || items[5].Key != "1-5" {
		t.Errorf("keys = %q, %q", items[0].Key, items[5].Key)
	}
	if items[4].Key != "E-4" {
		t.Errorf("title key = %q, want E-4", items[4].Key)
	}
}

func TestImageStyle(t *testing.T) {
	s := Slide{Rotation: 90}
	style := ImageStyle(s)
	if !strings.Contains(style, "rotate(90deg)") {
		t.Errorf("style %q missing rotation", style)
	}
	if !strings.Contains(style, "width: 100%") {
		t.Errorf("style %q should fill container", style)
	}

	capped := ImageStyle(Slide{IntrinsicWidth: 320, IntrinsicHeight: 200})
	if !strings.Contains(capped, "max-width: min(100%, 320px)") || !strings.Contains(capped, "max-height: 200px") {
		t.Errorf("style %q missing caps", capped)
	}
	if !strings.Contains(capped, "object-fit: contain") {
		t.Errorf("style %q missing contain", capped)
	}
}

func TestTrackStyle(t *testing.T) {
	if got := TrackStyle(Frame{Mode: ModeMarquee, Offset: 12.5}); got != "transform: translateX(-12.50px);" {
		t.Errorf("marquee = %q", got)
	}
	if got := TrackStyle(Frame{Mode: ModeWindowed, Index: 2}); got != "transform: translateX(-552px);" {
		t.Errorf("windowed = %q", got)
	}
	if got := TrackStyle(Frame{Mode: ModeHero}); got != "" {
		t.Errorf("hero = %q", got)
	}
}

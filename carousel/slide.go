// Package carousel drives the homepage slide collections: the single-slide
// hero banner and the "Our Solutions" strip, which either pages through a
// small window of items or scrolls continuously as a marquee.
package carousel

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/kindanddivine/kndweb/api"
)

// Layout and timing constants shared by the drivers and the views.
const (
	ItemWidth  = 260
	ItemGap    = 16
	WindowSize = 4
	// MarqueeThreshold is the item count above which the strip scrolls.
	MarqueeThreshold = 4

	AutoplayInterval     = 5 * time.Second
	DefaultMarqueeSpeed  = 15.0 // px/s, 0.25 px per frame at 60 Hz
	DefaultFrameInterval = time.Second / 30
)

// Position selects the collection a slide belongs to.
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
)

var (
	ErrUnknownPosition = errors.New("carousel: unknown position")
	ErrNoImage         = errors.New("carousel: slide has no image url")
)

// ParsePosition accepts "top" or "bottom".
func ParsePosition(s string) (Position, error) {
	switch Position(strings.ToLower(strings.TrimSpace(s))) {
	case PositionTop:
		return PositionTop, nil
	case PositionBottom:
		return PositionBottom, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPosition, s)
}

// Slide is one normalized carousel image.
type Slide struct {
	ID              *int
	Title           string
	AltText         string
	Description     string
	ImageURL        string
	Rotation        int
	IntrinsicWidth  int
	IntrinsicHeight int
	Position        Position
	SortOrder       int
}

// Key identifies the slide in a rendered list: its id when known, else its title.
func (s Slide) Key() string {
	if s.ID != nil {
		return fmt.Sprint(*s.ID)
	}
	return s.Title
}

var rightAngles = mapset.NewSet(0, 90, 180, 270)

// ValidRotation reports whether deg is one of 0, 90, 180, 270.
func ValidRotation(deg int) bool {
	return rightAngles.Contains(deg)
}

// NormalizeRotation reduces deg modulo 360. Right angles survive; anything
// else becomes 0 and ok is false.
func NormalizeRotation(deg int) (rot int, ok bool) {
	r := ((deg % 360) + 360) % 360
	if rightAngles.Contains(r) {
		return r, true
	}
	return 0, false
}

// Normalize maps a backend record onto a Slide.
func Normalize(rec api.Carousel) (Slide, error) {
	if strings.TrimSpace(rec.ImageURL) == "" {
		return Slide{}, ErrNoImage
	}
	rot, _ := NormalizeRotation(rec.Rotation)
	s := Slide{
		Title:       rec.Title,
		AltText:     rec.AltText,
		Description: rec.Description,
		ImageURL:    strings.TrimSpace(rec.ImageURL),
		Rotation:    rot,
		Position:    Position(rec.Position),
		SortOrder:   rec.SortOrder,
	}
	if rec.ID != 0 {
		id := rec.ID
		s.ID = &id
	}
	if rec.ImageWidth > 0 {
		s.IntrinsicWidth = rec.ImageWidth
	}
	if rec.ImageHeight > 0 {
		s.IntrinsicHeight = rec.ImageHeight
	}
	if s.AltText == "" {
		s.AltText = s.Title
	}
	return s, nil
}

// DefaultSlides returns a fresh copy of the static hero set.
func DefaultSlides() []Slide {
	return []Slide{
		{
			Title:       "AR Precision Parts",
			ImageURL:    "https://images.pexels.com/photos/373543/pexels-photo-373543.jpeg?auto=compress&cs=tinysrgb&w=1600",
			AltText:     "AR precision parts in production",
			Description: "High-precision AR-ready components for demanding industrial scenarios.",
			Position:    PositionTop,
		},
		{
			Title:       "Intelligent Platform",
			ImageURL:    "https://images.pexels.com/photos/1462935/pexels-photo-1462935.jpeg?auto=compress&cs=tinysrgb&w=1600",
			AltText:     "Intelligent platform dashboard",
			Description: "Unified platform connecting devices, data, and operations securely.",
			Position:    PositionTop,
		},
		{
			Title:       "Smart Mechanical Systems",
			ImageURL:    "https://images.pexels.com/photos/1337247/pexels-photo-1337247.jpeg?auto=compress&cs=tinysrgb&w=1600",
			AltText:     "Smart mechanical systems in operation",
			Description: "Mechanical systems enhanced with sensing, control, and analytics.",
			Position:    PositionTop,
		},
	}
}

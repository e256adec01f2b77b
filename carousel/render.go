package carousel

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderItem is one entry of a rendered strip. Keys stay unique even when
// the same slide appears twice.
type RenderItem struct {
	Key   string
	Slide Slide
}

// RenderList duplicates slides once ([...slides, ...slides]) so a marquee
// can wrap without a visible seam.
func RenderList(slides []Slide) []RenderItem {
	out := make([]RenderItem, 0, 2*len(slides))
	for copyIdx := 0; copyIdx < 2; copyIdx++ {
		for i, s := range slides {
			idx := copyIdx*len(slides) + i
			out = append(out, RenderItem{Key: s.Key() + "-" + strconv.Itoa(idx), Slide: s})
		}
	}
	return out
}

// ItemList is the windowed strip's list: each slide once.
func ItemList(slides []Slide) []RenderItem {
	out := make([]RenderItem, 0, len(slides))
	for i, s := range slides {
		out = append(out, RenderItem{Key: s.Key() + "-" + strconv.Itoa(i), Slide: s})
	}
	return out
}

// ImageStyle is the inline style for a slide image: the rotation about the
// center, plus intrinsic size caps when declared.
func ImageStyle(s Slide) string {
	var b strings.Builder
	fmt.Fprintf(&b, "transform: rotate(%ddeg); transform-origin: center; object-fit: contain;", s.Rotation)
	if s.IntrinsicWidth > 0 {
		fmt.Fprintf(&b, " max-width: min(100%%, %dpx);", s.IntrinsicWidth)
	} else {
		b.WriteString(" width: 100%;")
	}
	if s.IntrinsicHeight > 0 {
		fmt.Fprintf(&b, " max-height: %dpx;", s.IntrinsicHeight)
	} else {
		b.WriteString(" height: 100%;")
	}
	return b.String()
}

// TrackStyle positions the strip track for a frame.
func TrackStyle(f Frame) string {
	switch f.Mode {
	case ModeMarquee:
		return fmt.Sprintf("transform: translateX(-%.2fpx);", f.Offset)
	case ModeWindowed:
		return fmt.Sprintf("transform: translateX(-%dpx);", f.Index*(ItemWidth+ItemGap))
	}
	return ""
}

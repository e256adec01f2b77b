package views

import (
	"strconv"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/kindanddivine/kndweb/carousel"
)

func slideImage(s carousel.Slide, eager bool) g.Node {
	loading := "lazy"
	if eager {
		loading = "eager"
	}
	return Img(
		Src(s.ImageURL),
		Alt(s.AltText),
		Loading(loading),
		Style(carousel.ImageStyle(s)),
	)
}

// HeroCarousel renders the top collection: one active slide, its caption,
// previous/next controls and a dot per slide.
func HeroCarousel(v StripView) g.Node {
	slides := v.Collection.Slides
	active := v.Frame.Index
	if active < 0 || active >= len(slides) {
		active = 0
	}
	var caption g.Node
	if len(slides) > 0 {
		caption = heroCaption(slides[active])
	}
	return Div(
		Class("hero-carousel"),
		g.Attr("data-carousel", string(carousel.PositionTop)),
		g.Attr("data-mode", string(carousel.ModeHero)),
		g.Attr("data-count", strconv.Itoa(len(slides))),
		g.If(v.Collection.Fallback, g.Attr("data-fallback", "true")),
		Div(Class("hero-slides"),
			g.Group(heroSlides(slides, active)),
			Div(Class("hero-overlay")),
		),
		caption,
		g.If(len(slides) > 1, Div(Class("hero-controls"),
			Button(Type("button"), Class("hero-prev"), g.Attr("aria-label", "Previous slide"), g.Attr("data-action", "prev"), g.Text("‹")),
			Button(Type("button"), Class("hero-next"), g.Attr("aria-label", "Next slide"), g.Attr("data-action", "next"), g.Text("›")),
		)),
		g.If(len(slides) > 1, Div(Class("hero-dots"), g.Group(heroDots(len(slides), active)))),
	)
}

func heroSlides(slides []carousel.Slide, active int) []g.Node {
	items := carousel.ItemList(slides)
	nodes := make([]g.Node, len(items))
	for i, it := range items {
		nodes[i] = Div(
			Class(slideClass("hero-slide", i == active)),
			g.Attr("data-index", strconv.Itoa(i)),
			g.Attr("data-key", it.Key),
			g.Attr("data-title", it.Slide.Title),
			g.Attr("data-description", it.Slide.Description),
			slideImage(it.Slide, i == 0),
		)
	}
	return nodes
}

func heroDots(n, active int) []g.Node {
	nodes := make([]g.Node, n)
	for i := range n {
		nodes[i] = Button(
			Type("button"),
			Class(slideClass("hero-dot", i == active)),
			g.Attr("aria-label", "Go to slide "+strconv.Itoa(i+1)),
			g.Attr("data-action", "jump"),
			g.Attr("data-to", strconv.Itoa(i)),
		)
	}
	return nodes
}

// heroCaption shows the active slide's title over its description. The
// description paragraph is always present so the client can fill it in.
func heroCaption(s carousel.Slide) g.Node {
	return Div(Class("hero-caption"), g.Attr("data-caption", ""),
		H2(Class("hero-title"), g.Text(s.Title)),
		P(Class("hero-description"), g.If(s.Description == "", g.Attr("hidden")), g.Text(s.Description)),
	)
}

func slideClass(base string, active bool) string {
	if active {
		return base + " active"
	}
	return base
}

// SolutionStrip renders the bottom collection as a windowed row or a
// seamless marquee, or the empty-state message.
func SolutionStrip(v StripView) g.Node {
	if v.Collection.Empty || len(v.Collection.Slides) == 0 {
		return Div(Class("strip-empty"), P(g.Text(carousel.EmptyStripMessage)))
	}
	mode := v.Frame.Mode
	if mode == "" {
		mode = carousel.Select(len(v.Collection.Slides), carousel.Options{}).Mode()
	}
	items := carousel.ItemList(v.Collection.Slides)
	if mode == carousel.ModeMarquee {
		items = carousel.RenderList(v.Collection.Slides)
	}
	return Div(
		Class("solution-strip strip-"+string(mode)),
		g.Attr("data-carousel", string(carousel.PositionBottom)),
		g.Attr("data-mode", string(mode)),
		g.Attr("data-count", strconv.Itoa(len(v.Collection.Slides))),
		g.Attr("data-item-width", strconv.Itoa(carousel.ItemWidth+carousel.ItemGap)),
		g.If(mode == carousel.ModeMarquee, Div(Class("strip-fade strip-fade-left"))),
		Div(Class("strip-viewport"),
			Div(
				Class("strip-track"),
				Style(carousel.TrackStyle(v.Frame)),
				g.Group(g.Map(items, func(it carousel.RenderItem) g.Node {
					return Div(
						Class("strip-item"),
						g.Attr("data-key", it.Key),
						Style("width: "+strconv.Itoa(carousel.ItemWidth)+"px; margin-right: "+strconv.Itoa(carousel.ItemGap)+"px;"),
						Div(Class("strip-image"), slideImage(it.Slide, false)),
						H3(g.Text(it.Slide.Title)),
						g.If(it.Slide.Description != "", P(g.Text(it.Slide.Description))),
					)
				})),
			),
		),
		g.If(mode == carousel.ModeMarquee, Div(Class("strip-fade strip-fade-right"))),
	)
}

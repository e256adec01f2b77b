package views

import (
	"strconv"
	"strings"
	"time"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/kindanddivine/kndweb/api"
)

var navItems = []struct{ Href, Label string }{
	{"/", "Home"},
	{"/about/", "About Us"},
	{"/news/", "News"},
	{"/solution/", "Solutions"},
	{"/contact/", "Contact Us"},
}

var socialIcons = map[string]string{
	"facebook":  "facebook",
	"twitter":   "twitter",
	"x":         "twitter",
	"linkedin":  "linkedin",
	"instagram": "instagram",
	"youtube":   "youtube",
	"github":    "github",
	"wechat":    "wechat",
	"weibo":     "weibo",
}

// SocialIcon maps a platform name to its icon, falling back to a globe.
func SocialIcon(platform string) string {
	if icon, ok := socialIcons[strings.ToLower(strings.TrimSpace(platform))]; ok {
		return icon
	}
	return "globe"
}

func isActive(current, href string) bool {
	if href == "/" {
		return current == "/"
	}
	return strings.HasPrefix(current, href)
}

func pageTitle(p Page) string {
	if p.Meta.Title == "" || p.Meta.Title == p.Site.Name {
		return p.Site.Name
	}
	return p.Meta.Title + " | " + p.Site.Name
}

func head(p Page, extra ...g.Node) g.Node {
	desc := p.Meta.Description
	if desc == "" {
		desc = p.Site.Description
	}
	ogType := p.Meta.OGType
	if ogType == "" {
		ogType = "website"
	}
	canonical := p.Meta.URL
	if canonical == "" {
		canonical = buildURL(p.Site.URL, p.Path)
	}
	return Head(
		Meta(Charset("utf-8")),
		Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
		TitleEl(g.Text(pageTitle(p))),
		Meta(Name("description"), Content(desc)),
		g.If(p.Meta.Keywords != "", Meta(Name("keywords"), Content(p.Meta.Keywords))),
		g.If(p.CSRF != "", Meta(Name("csrf-token"), Content(p.CSRF))),
		Link(Rel("canonical"), Href(canonical)),
		Meta(g.Attr("property", "og:title"), Content(pageTitle(p))),
		Meta(g.Attr("property", "og:description"), Content(desc)),
		Meta(g.Attr("property", "og:type"), Content(ogType)),
		Meta(g.Attr("property", "og:url"), Content(canonical)),
		g.If(p.Meta.Image != "", Meta(g.Attr("property", "og:image"), Content(p.Meta.Image))),
		Link(Rel("alternate"), Type("application/rss+xml"), Title(p.Site.Name), Href("/feed.xml")),
		Link(Rel("stylesheet"), Href("/public/site.css")),
		Script(Type("application/ld+json"), g.Raw(websiteJsonLD(p.Site))),
		g.Group(extra),
	)
}

func navbar(p Page) g.Node {
	return Header(Class("navbar"),
		Nav(Class("navbar-inner"),
			A(Class("brand"), Href("/"), g.Text("KND")),
			Ul(Class("nav-links"),
				g.Group(g.Map(navItems, func(item struct{ Href, Label string }) g.Node {
					return Li(A(
						Href(item.Href),
						g.If(isActive(p.Path, item.Href), Class("active")),
						g.If(isActive(p.Path, item.Href), g.Attr("aria-current", "page")),
						g.Text(item.Label),
					))
				})),
			),
			A(Class("btn btn-accent"), Href("/contact/"), g.Text("Get a Quote")),
		),
	)
}

func socialLinks(links []api.SocialLink) g.Node {
	if len(links) == 0 {
		return nil
	}
	return Div(Class("social-links"),
		g.Group(g.Map(links, func(l api.SocialLink) g.Node {
			icon := SocialIcon(l.Platform)
			return A(
				Href(l.URL),
				Target("_blank"),
				Rel("noopener noreferrer"),
				Class("social-link"),
				g.Attr("aria-label", l.Platform),
				Span(Class("icon icon-"+icon), g.Attr("data-platform", icon)),
			)
		})),
	)
}

func contactList(site Site) g.Node {
	return Ul(Class("contact-list"),
		g.If(site.Email != "", Li(
			Span(Class("label"), g.Text("Email: ")),
			A(Href("mailto:"+site.Email), g.Text(site.Email)),
		)),
		g.If(site.Phone != "", Li(
			Span(Class("label"), g.Text("Phone: ")),
			A(Href("tel:"+strings.ReplaceAll(site.Phone, " ", "")), g.Text(site.Phone)),
		)),
		g.If(site.Address != "", Li(
			Span(Class("label"), g.Text("Address: ")),
			Span(g.Text(site.Address)),
		)),
	)
}

func footer(p Page) g.Node {
	return Footer(Class("footer"),
		Div(Class("footer-grid"),
			Div(
				H3(g.Text("KND Intelligent Hardware")),
				P(g.Text("AR precision parts, smart mechanical systems, and integrated technology solutions for modern industry.")),
				socialLinks(p.Social),
			),
			Div(
				H4(g.Text("Navigation")),
				Ul(g.Group(g.Map(navItems, func(item struct{ Href, Label string }) g.Node {
					return Li(A(Href(item.Href), g.Text(item.Label)))
				}))),
			),
			Div(
				H4(g.Text("Contact")),
				contactList(p.Site),
			),
			Div(
				H4(g.Text("Get in touch")),
				P(g.Text("Have a project or need technical support? Reach out to our team.")),
				A(Class("btn btn-accent"), Href("/contact/"), g.Text("Contact Us")),
			),
		),
		Div(Class("footer-bottom"),
			Span(g.Text("© "+strconv.Itoa(time.Now().Year())+" KND Intelligent Hardware. All rights reserved.")),
			Span(g.Text("B2B AR hardware & precision parts platform.")),
		),
	)
}

// layout wraps public page content with the shared head, navbar and footer.
func layout(p Page, body g.Node, headExtra ...g.Node) g.Node {
	return Doctype(
		HTML(Lang("en"),
			head(p, headExtra...),
			Body(
				navbar(p),
				Main(ID("main"), body),
				footer(p),
				Script(Src("/public/carousel.js"), Defer()),
			),
		),
	)
}

package views

import (
	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/kindanddivine/kndweb/api"
)

type service struct {
	Icon, Title, Description string
}

var services = []service{
	{"microchip", "ENGINEERING SUPPORT", "Technological progress in human civilization demands higher precision and absolute unwavering faith."},
	{"cube", "PROTOTYPING SERVICES", "Initial fusion is quite essential for the creators, we use the latest methods."},
	{"lightbulb", "FEASIBILITY STUDY", "Imagination is another step for creation, we can see ideas into product realization."},
	{"robot", "AI & AUTOMATION", "When there is a necessity to provide the services without charge, we are committed absolutely."},
}

type stat struct{ Value, Label string }

var homeStats = []stat{
	{"15+", "Years Innovation"},
	{"100+", "Patents Filed"},
	{"50+", "R&D Engineers"},
	{"ISO 9001", "Technical Support Certified"},
}

func statsGrid(stats []stat) g.Node {
	return Div(Class("stats-grid"),
		g.Group(g.Map(stats, func(s stat) g.Node {
			return Div(Class("stat"),
				Div(Class("stat-value"), g.Text(s.Value)),
				Div(Class("stat-label"), g.Text(s.Label)),
			)
		})),
	)
}

func newsCard(b api.Blog) g.Node {
	return Article(Class("news-card"),
		A(Href(BlogURL(b)),
			H3(g.Text(b.Title)),
		),
		g.If(!b.CreatedAt.IsZero(), Time(g.Attr("datetime", b.CreatedAt.Format("2006-01-02")), g.Text(FormatDate(b.CreatedAt)))),
		P(g.Text(BlogDescription(b))),
		A(Class("read-more"), Href(BlogURL(b)), g.Text("Read more →")),
	)
}

// Home renders the landing page.
func Home(p HomePage) templ.Component {
	body := g.Group{
		Section(Class("hero"),
			HeroCarousel(p.Hero),
			Div(Class("hero-content"),
				P(Class("hero-eyebrow"), g.Text("Engineering Excellence")),
				H1(g.Text("Intelligent Hardware · AR Precision")),
				P(Class("hero-lead"), g.Text("High-precision AR-ready components, smart mechanical systems, and integrated platforms powering modern industry.")),
				Div(Class("hero-actions"),
					A(Class("btn btn-outline"), Href("/contact/"), g.Text("Get Started Now")),
					A(Class("btn btn-outline"), Href("/news/"), g.Text("New Solution")),
				),
			),
		),
		Section(Class("services"),
			H2(g.Text("Our Services")),
			P(Class("section-lead"), g.Text("Engineering support and services that turn ideas into manufacturable, high-quality hardware.")),
			Div(Class("services-grid"),
				g.Group(g.Map(services, func(s service) g.Node {
					return Div(Class("service-card"),
						Span(Class("icon icon-"+s.Icon)),
						H3(g.Text(s.Title)),
						P(g.Text(s.Description)),
					)
				})),
			),
		),
		Section(Class("solutions-strip"),
			H2(g.Text("Our Solutions")),
			P(Class("section-lead"), g.Text("It is always that the countermeasure is more than the difficulties.")),
			SolutionStrip(p.Strip),
		),
		Section(Class("stats"), statsGrid(homeStats)),
		g.If(len(p.Latest) > 0, Section(Class("latest-news"),
			H2(g.Text("Latest News")),
			Div(Class("news-grid"), g.Group(g.Map(p.Latest, newsCard))),
			A(Class("btn btn-outline"), Href("/news/"), g.Text("View all news")),
		)),
	}
	return component(layout(p.Page, body))
}

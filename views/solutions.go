package views

import (
	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/kindanddivine/kndweb/api"
	"github.com/kindanddivine/kndweb/markdown"
)

func solutionCard(s api.Solution) g.Node {
	return Article(Class("solution-card"),
		g.If(s.ImageURL != "", A(Href(SolutionURL(s)),
			Img(Src(s.ImageURL), Alt(s.Title), Loading("lazy")),
		)),
		H3(A(Href(SolutionURL(s)), g.Text(s.Title))),
		P(g.Text(markdown.Excerpt(s.Description, 160))),
	)
}

// Solutions renders the solution list.
func Solutions(p SolutionsPage) templ.Component {
	var list g.Node
	switch {
	case len(p.Solutions) > 0:
		list = Div(Class("solutions-grid"), g.Group(g.Map(p.Solutions, solutionCard)))
	case p.Query != "":
		list = P(Class("empty"), g.Text("No solutions match \""+p.Query+"\"."))
	default:
		list = P(Class("empty"), g.Text("No solutions published yet."))
	}
	body := g.Group{
		Section(Class("page-hero"),
			H1(g.Text("Our Solutions")),
			P(Class("hero-lead"), g.Text("It is always that the countermeasure is more than the difficulties.")),
		),
		Section(Class("solutions"),
			searchForm("/solution/", p.Query, "Search solutions"),
			list,
		),
	}
	return component(layout(p.Page, body))
}

// Solution renders one solution with links to the others.
func Solution(p SolutionPage) templ.Component {
	s := p.Solution
	body := Article(Class("solution-detail"),
		A(Class("back-link"), Href("/solution/"), g.Text("← All solutions")),
		H1(g.Text(s.Title)),
		g.If(s.ImageURL != "", Img(Class("solution-image"), Src(s.ImageURL), Alt(s.Title))),
		Div(Class("prose"), g.Raw(markdown.HTML(s.Description))),
		A(Class("btn btn-accent"), Href("/contact/"), g.Text("Talk to our engineers")),
		g.If(len(p.Others) > 0, Aside(Class("related-solutions"),
			H2(g.Text("More solutions")),
			Div(Class("solutions-grid"), g.Group(g.Map(p.Others, solutionCard))),
		)),
	)
	return component(layout(p.Page, body))
}

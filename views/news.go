package views

import (
	"strconv"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/kindanddivine/kndweb/api"
	"github.com/kindanddivine/kndweb/markdown"
)

// DefaultCategories fill the news sidebar when the backend has none.
var DefaultCategories = []api.Category{
	{Name: "Industry Trends", Slug: "industry-trends"},
	{Name: "Product Updates", Slug: "product-updates"},
	{Name: "Solutions", Slug: "solutions"},
	{Name: "Tech Insights", Slug: "tech-insights"},
}

func searchForm(action, query, placeholder string) g.Node {
	return Form(Method("get"), Action(action), Class("search-form"), Role("search"),
		Input(Type("search"), Name("q"), Value(query), Placeholder(placeholder), g.Attr("aria-label", placeholder)),
		Button(Type("submit"), Class("btn"), g.Text("Search")),
	)
}

func categorySidebar(cats []api.Category) g.Node {
	if len(cats) == 0 {
		cats = DefaultCategories
	}
	return Aside(Class("news-sidebar"),
		H3(g.Text("Categories")),
		Ul(Class("category-list"),
			g.Group(g.Map(cats, func(c api.Category) g.Node {
				return Li(
					g.If(c.Color != "", Style("--category-color: "+c.Color)),
					g.If(c.Icon != "", Span(Class("icon icon-"+c.Icon))),
					Span(Class("category-name"), g.Text(c.Name)),
					g.If(c.Count > 0, Span(Class("category-count"), g.Text(strconv.Itoa(c.Count)))),
				)
			})),
		),
	)
}

// News renders the article list.
func News(p NewsPage) templ.Component {
	var list g.Node
	switch {
	case len(p.Posts) > 0:
		list = Div(Class("news-grid"), g.Group(g.Map(p.Posts, newsCard)))
	case p.Query != "":
		list = P(Class("empty"), g.Text("No articles match \""+p.Query+"\"."))
	default:
		list = P(Class("empty"), g.Text("No articles yet."))
	}
	body := g.Group{
		Section(Class("page-hero"),
			H1(g.Text("News")),
			P(Class("hero-lead"), g.Text("Company updates, industry trends and technical insights.")),
		),
		Div(Class("news-layout"),
			Div(Class("news-main"),
				searchForm("/news/", p.Query, "Search articles"),
				list,
			),
			categorySidebar(p.Categories),
		),
	}
	return component(layout(p.Page, body))
}

// Post renders a single article.
func Post(p ArticlePage) templ.Component {
	post := p.Post
	body := Article(Class("article"),
		Header(Class("article-header"),
			A(Class("back-link"), Href("/news/"), g.Text("← Back to news")),
			H1(g.Text(post.Title)),
			g.If(!post.CreatedAt.IsZero(), Time(g.Attr("datetime", post.CreatedAt.Format("2006-01-02")), g.Text(FormatDate(post.CreatedAt)))),
			g.If(post.Summary != "", P(Class("article-summary"), g.Text(post.Summary))),
		),
		Div(Class("prose"), g.Raw(markdown.HTML(post.Content))),
		g.If(len(p.Recent) > 0, Aside(Class("recent-posts"),
			H2(g.Text("Recent articles")),
			Ul(g.Group(g.Map(p.Recent, func(b api.Blog) g.Node {
				return Li(A(Href(BlogURL(b)), g.Text(b.Title)))
			}))),
		)),
	)
	return component(layout(p.Page, body,
		Script(Type("application/ld+json"), g.Raw(blogPostingJsonLD(post, p.Site))),
	))
}

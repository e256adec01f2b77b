package views

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/kindanddivine/kndweb/api"
	"github.com/kindanddivine/kndweb/markdown"
)

// Rotations are the choices offered for carousel image rotation.
var Rotations = []int{0, 90, 180, 270}

func adminDoc(p Page, body ...g.Node) g.Node {
	p.Meta.Title = "Admin"
	return Doctype(
		HTML(Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
				Meta(Name("robots"), Content("noindex, nofollow")),
				TitleEl(g.Text(pageTitle(p))),
				Link(Rel("stylesheet"), Href("/public/site.css")),
				Script(Src("/public/admin.js"), Defer()),
			),
			Body(Class("admin"), g.Group(body)),
		),
	)
}

// AdminLogin renders the sign-in form.
func AdminLogin(p LoginPage) templ.Component {
	return component(adminDoc(p.Page,
		Main(Class("admin-login"),
			H1(g.Text("Admin Login")),
			g.If(p.Error != "", Div(Class("alert alert-error"), g.Text(p.Error))),
			Form(Method("post"), Action("/admin/login/"),
				csrfInput(p.CSRF),
				field("username", "Username", "text", "", "", true),
				field("password", "Password", "password", "", "", true),
				Button(Type("submit"), Class("btn btn-accent"), g.Text("Sign in")),
			),
		),
	))
}

func tabURL(tab string) string { return "/admin/" + tab + "/" }

func tabNav(active string) g.Node {
	return Nav(Class("admin-tabs"),
		g.Group(g.Map(Tabs, func(t struct{ Key, Label string }) g.Node {
			return A(Href(tabURL(t.Key)), Class(slideClass("tab", t.Key == active)), g.Text(t.Label))
		})),
	)
}

// Admin renders the dashboard with the active tab.
func Admin(p AdminPage) templ.Component {
	var tab g.Node
	switch p.Tab {
	case TabSolutions:
		tab = solutionsTab(p)
	case TabCarousels:
		tab = carouselsTab(p)
	case TabContacts:
		tab = contactsTab(p)
	case TabSocial:
		tab = socialTab(p)
	case TabMedia:
		tab = mediaTab(p)
	case TabAccount:
		tab = accountTab(p)
	case TabDatabase:
		tab = databaseTab(p)
	default:
		tab = blogsTab(p)
	}
	return component(adminDoc(p.Page,
		Header(Class("admin-header"),
			H1(g.Text(p.Site.Name+" Admin")),
			Div(Class("admin-user"),
				g.If(p.Username != "", Span(g.Text("Signed in as "+p.Username))),
				Form(Method("post"), Action("/admin/logout/"),
					csrfInput(p.CSRF),
					Button(Type("submit"), Class("btn"), g.Text("Log out")),
				),
				A(Href("/"), Target("_blank"), g.Text("View site")),
			),
		),
		tabNav(p.Tab),
		Main(Class("admin-main"),
			g.If(p.Message != "", Div(Class("alert alert-success"), g.Text(p.Message))),
			g.If(p.Error != "", Div(Class("alert alert-error"), g.Text(p.Error))),
			tab,
		),
	))
}

func postForm(action, csrf string, children ...g.Node) g.Node {
	return Form(Method("post"), Action(action), Class("admin-form"),
		csrfInput(csrf),
		g.Group(children),
	)
}

func deleteButton(action, csrf, what string) g.Node {
	return Form(Method("post"), Action(action), Class("inline"),
		g.Attr("onsubmit", "return confirm('Delete this "+what+"?')"),
		csrfInput(csrf),
		Button(Type("submit"), Class("btn btn-danger"), g.Text("Delete")),
	)
}

func editLink(tab string, id int) g.Node {
	return A(Class("btn"), Href(tabURL(tab)+"?edit="+strconv.Itoa(id)), g.Text("Edit"))
}

func itemAction(tab string, id int, suffix string) string {
	return tabURL(tab) + strconv.Itoa(id) + "/" + suffix
}

func saveAction(tab string, id int) string {
	if id == 0 {
		return tabURL(tab)
	}
	return itemAction(tab, id, "")
}

func formTitle(id int, noun string) string {
	if id == 0 {
		return "New " + noun
	}
	return "Edit " + noun
}

func listHeader(tab, query, placeholder string, count int) g.Node {
	return Div(Class("list-header"),
		searchForm(tabURL(tab), query, placeholder),
		Span(Class("count"), g.Text(strconv.Itoa(count)+" items")),
		A(Class("btn btn-accent"), Href(tabURL(tab)+"#form"), g.Text("New")),
	)
}

// SEOPreview simulates a search result for a post or solution.
func SEOPreview(siteURL, kind, path, title, metaTitle, description, metaDescription string) g.Node {
	if path == "" {
		path = "your-url-slug"
	}
	displayTitle := metaTitle
	if displayTitle == "" {
		displayTitle = title
	}
	if displayTitle == "" {
		displayTitle = "Your Page Title"
	}
	desc := metaDescription
	if desc == "" {
		desc = description
	}
	if desc == "" {
		desc = "Please provide a summary for your content. This will appear in search results."
	}
	return Div(Class("seo-preview"),
		Div(Class("seo-url"), g.Text(strings.TrimRight(siteURL, "/")+"/"+kind+"/"+path)),
		H3(Class("seo-title"), g.Text(displayTitle)),
		P(Class("seo-description"), g.Text(markdown.Truncate(desc, 160))),
		Small(g.Text("* This is a simulation of how your page might appear in Google search results. Actual display may vary.")),
	)
}

func metaFields(title, desc, keywords string) g.Node {
	return FieldSet(
		Legend(g.Text("SEO")),
		field("meta_title", "Meta title", "text", title, "", false),
		field("meta_description", "Meta description", "textarea", desc, "", false),
		field("meta_keywords", "Meta keywords", "text", keywords, "", false),
	)
}

func blogsTab(p AdminPage) g.Node {
	b := api.Blog{}
	if p.EditBlog != nil {
		b = *p.EditBlog
	}
	return Div(Class("tab-panel"),
		listHeader(TabBlogs, p.Query, "Search posts", len(p.Blogs)),
		Table(Class("admin-table"),
			THead(Tr(Th(g.Text("Title")), Th(g.Text("Path")), Th(g.Text("Created")), Th())),
			TBody(g.Group(g.Map(p.Blogs, func(x api.Blog) g.Node {
				return Tr(
					Td(A(Href(BlogURL(x)), Target("_blank"), g.Text(x.Title))),
					Td(g.Text(x.Path)),
					Td(g.Text(FormatDate(x.CreatedAt))),
					Td(Class("actions"), editLink(TabBlogs, x.ID), deleteButton(itemAction(TabBlogs, x.ID, "delete/"), p.CSRF, "post")),
				)
			}))),
		),
		Section(ID("form"),
			H2(g.Text(formTitle(b.ID, "post"))),
			postForm(saveAction(TabBlogs, b.ID), p.CSRF,
				field("title", "Title", "text", b.Title, "", true),
				field("path", "URL path (blank derives it from the title)", "text", b.Path, "", false),
				field("summary", "Summary", "textarea", b.Summary, "", false),
				field("content", "Content (markdown)", "textarea", b.Content, "", true),
				metaFields(b.MetaTitle, b.MetaDescription, b.MetaKeywords),
				SEOPreview(p.Site.URL, "blog", b.Path, b.Title, b.MetaTitle, b.Summary, b.MetaDescription),
				Button(Type("submit"), Class("btn btn-accent"), g.Text("Save")),
			),
		),
	)
}

func solutionsTab(p AdminPage) g.Node {
	s := api.Solution{}
	if p.EditSolution != nil {
		s = *p.EditSolution
	}
	return Div(Class("tab-panel"),
		listHeader(TabSolutions, p.Query, "Search solutions", len(p.Solutions)),
		Table(Class("admin-table"),
			THead(Tr(Th(g.Text("Image")), Th(g.Text("Title")), Th(g.Text("Path")), Th())),
			TBody(g.Group(g.Map(p.Solutions, func(x api.Solution) g.Node {
				return Tr(
					Td(g.If(x.ImageURL != "", Img(Class("thumb"), Src(x.ImageURL), Alt(x.Title)))),
					Td(A(Href(SolutionURL(x)), Target("_blank"), g.Text(x.Title))),
					Td(g.Text(x.Path)),
					Td(Class("actions"), editLink(TabSolutions, x.ID), deleteButton(itemAction(TabSolutions, x.ID, "delete/"), p.CSRF, "solution")),
				)
			}))),
		),
		Section(ID("form"),
			H2(g.Text(formTitle(s.ID, "solution"))),
			postForm(saveAction(TabSolutions, s.ID), p.CSRF,
				field("title", "Title", "text", s.Title, "", true),
				field("description", "Description (markdown)", "textarea", s.Description, "", true),
				field("image_url", "Image URL", "text", s.ImageURL, "", false),
				mediaPicker("image_url", p.Images),
				field("path", "URL path (blank derives it from the title)", "text", s.Path, "", false),
				metaFields(s.MetaTitle, s.MetaDescription, s.MetaKeywords),
				SEOPreview(p.Site.URL, "solution", s.Path, s.Title, s.MetaTitle, s.Description, s.MetaDescription),
				Button(Type("submit"), Class("btn btn-accent"), g.Text("Save")),
			),
		),
	)
}

// mediaPicker lists uploaded images so an admin can copy a URL into target.
func mediaPicker(target string, images []MediaImage) g.Node {
	if len(images) == 0 {
		return nil
	}
	return Details(Class("media-picker"),
		Summary(g.Text("Pick from media library")),
		Div(Class("media-grid"),
			g.Group(g.Map(images, func(img MediaImage) g.Node {
				return Button(Type("button"), Class("media-choice"),
					g.Attr("data-fill", target),
					g.Attr("data-url", img.URL),
					g.Attr("data-width", strconv.Itoa(img.Width)),
					g.Attr("data-height", strconv.Itoa(img.Height)),
					Img(Src(img.URL), Alt(img.OriginalName), Loading("lazy")),
				)
			})),
		),
	)
}

func selectField(name, label string, options []string, selected string) g.Node {
	return Div(Class("field"),
		Label(For(name), g.Text(label)),
		Select(ID(name), Name(name),
			g.Group(g.Map(options, func(o string) g.Node {
				return Option(Value(o), g.If(o == selected, Selected()), g.Text(o))
			})),
		),
	)
}

func itoaOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// GroupCarousels splits records by position, each ordered by sort_order.
func GroupCarousels(items []api.Carousel) (top, bottom []api.Carousel) {
	for _, c := range items {
		if c.Position == "bottom" {
			bottom = append(bottom, c)
		} else {
			top = append(top, c)
		}
	}
	bySort := func(s []api.Carousel) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].SortOrder < s[j].SortOrder })
	}
	bySort(top)
	bySort(bottom)
	return top, bottom
}

func carouselTable(title string, items []api.Carousel, csrf string) g.Node {
	return Section(
		H3(g.Text(title+" ("+strconv.Itoa(len(items))+")")),
		Table(Class("admin-table"),
			THead(Tr(Th(g.Text("Image")), Th(g.Text("Title")), Th(g.Text("Order")), Th(g.Text("Rotation")), Th())),
			TBody(g.Group(g.Map(items, func(c api.Carousel) g.Node {
				return Tr(
					Td(Img(Class("thumb"), Src(c.ImageURL), Alt(c.AltText), Style("transform: rotate("+strconv.Itoa(c.Rotation)+"deg)"))),
					Td(g.Text(c.Title)),
					Td(g.Text(strconv.Itoa(c.SortOrder))),
					Td(g.Text(strconv.Itoa(c.Rotation)+"°")),
					Td(Class("actions"), editLink(TabCarousels, c.ID), deleteButton(itemAction(TabCarousels, c.ID, "delete/"), csrf, "image")),
				)
			}))),
		),
	)
}

func carouselsTab(p AdminPage) g.Node {
	c := api.Carousel{Position: "top"}
	if p.EditCarousel != nil {
		c = *p.EditCarousel
	}
	top, bottom := GroupCarousels(p.Carousels)
	rotations := make([]string, len(Rotations))
	for i, r := range Rotations {
		rotations[i] = strconv.Itoa(r)
	}
	return Div(Class("tab-panel"),
		carouselTable("Hero (top)", top, p.CSRF),
		carouselTable("Solutions strip (bottom)", bottom, p.CSRF),
		Section(ID("form"),
			H2(g.Text(formTitle(c.ID, "carousel image"))),
			postForm(saveAction(TabCarousels, c.ID), p.CSRF,
				field("title", "Title", "text", c.Title, "", true),
				field("image_url", "Image URL", "text", c.ImageURL, "", true),
				mediaPicker("image_url", p.Images),
				field("alt_text", "Alt text", "text", c.AltText, "", false),
				field("description", "Description", "textarea", c.Description, "", false),
				field("sort_order", "Sort order", "number", strconv.Itoa(c.SortOrder), "", false),
				selectField("position", "Position", []string{"top", "bottom"}, c.Position),
				selectField("rotation", "Rotation (degrees)", rotations, strconv.Itoa(c.Rotation)),
				field("image_width", "Image width (px)", "number", itoaOrEmpty(c.ImageWidth), "", false),
				field("image_height", "Image height (px)", "number", itoaOrEmpty(c.ImageHeight), "", false),
				Button(Type("submit"), Class("btn btn-accent"), g.Text("Save")),
			),
		),
	)
}

func contactsTab(p AdminPage) g.Node {
	return Div(Class("tab-panel"),
		Div(Class("list-header"),
			searchForm(tabURL(TabContacts), p.Query, "Search messages"),
			Span(Class("count"), g.Text(strconv.Itoa(len(p.Contacts))+" messages")),
		),
		g.If(len(p.Contacts) == 0, P(Class("empty"), g.Text("No messages yet."))),
		g.Group(g.Map(p.Contacts, func(c api.Contact) g.Node {
			return Article(Class("contact-message"),
				Header(
					Strong(g.Text(c.Name)),
					g.Text(" "),
					A(Href("mailto:"+c.Email+"?subject="+url.PathEscape("Re: "+c.Subject)), g.Text("<"+c.Email+">")),
					Time(g.Text(FormatDate(c.CreatedAt))),
				),
				H3(g.Text(c.Subject)),
				P(Class("message-body"), g.Text(c.Message)),
				deleteButton(itemAction(TabContacts, c.ID, "delete/"), p.CSRF, "message"),
			)
		})),
	)
}

func socialTab(p AdminPage) g.Node {
	s := api.SocialLink{}
	if p.EditSocial != nil {
		s = *p.EditSocial
	}
	platforms := []string{"facebook", "twitter", "linkedin", "instagram", "youtube", "github", "wechat", "weibo"}
	return Div(Class("tab-panel"),
		Table(Class("admin-table"),
			THead(Tr(Th(g.Text("Platform")), Th(g.Text("URL")), Th(g.Text("Order")), Th())),
			TBody(g.Group(g.Map(p.SocialLinks, func(l api.SocialLink) g.Node {
				return Tr(
					Td(Span(Class("icon icon-"+SocialIcon(l.Platform))), g.Text(" "+l.Platform)),
					Td(A(Href(l.URL), Target("_blank"), g.Text(l.URL))),
					Td(g.Text(strconv.Itoa(l.SortOrder))),
					Td(Class("actions"), editLink(TabSocial, l.ID), deleteButton(itemAction(TabSocial, l.ID, "delete/"), p.CSRF, "link")),
				)
			}))),
		),
		Section(ID("form"),
			H2(g.Text(formTitle(s.ID, "social link"))),
			postForm(saveAction(TabSocial, s.ID), p.CSRF,
				selectField("platform", "Platform", platforms, strings.ToLower(s.Platform)),
				field("url", "URL", "url", s.URL, "", true),
				field("sort_order", "Sort order", "number", strconv.Itoa(s.SortOrder), "", false),
				Button(Type("submit"), Class("btn btn-accent"), g.Text("Save")),
			),
		),
	)
}

func mediaTab(p AdminPage) g.Node {
	return Div(Class("tab-panel"),
		Form(Method("post"), Action(tabURL(TabMedia)+"upload/"), EncType("multipart/form-data"), Class("admin-form"),
			csrfInput(p.CSRF),
			Div(Class("field"),
				Label(For("image"), g.Text("Upload image (jpg, png, gif; max 10MB)")),
				Input(ID("image"), Name("image"), Type("file"), Accept(".jpg,.jpeg,.png,.gif"), Required()),
			),
			Button(Type("submit"), Class("btn btn-accent"), g.Text("Upload")),
		),
		g.If(len(p.Images) == 0, P(Class("empty"), g.Text("No images uploaded yet."))),
		Div(Class("media-grid"),
			g.Group(g.Map(p.Images, func(img MediaImage) g.Node {
				return Figure(Class("media-item"),
					Img(Src(img.URL), Alt(img.OriginalName), Loading("lazy")),
					FigCaption(
						Input(Type("text"), ReadOnly(), Value(img.URL), g.Attr("onclick", "this.select()")),
						Small(g.Textf("%d×%d · %s", img.Width, img.Height, formatSize(int64(img.Size)))),
					),
					deleteButton(tabURL(TabMedia)+url.PathEscape(img.Filename)+"/delete/", p.CSRF, "image"),
				)
			})),
		),
	)
}

func accountTab(p AdminPage) g.Node {
	return Div(Class("tab-panel"),
		H2(g.Text("Change credentials")),
		postForm(tabURL(TabAccount), p.CSRF,
			field("current_password", "Current password", "password", "", "", true),
			field("new_username", "New username (optional)", "text", "", "", false),
			field("new_password", "New password (min 6 characters, optional)", "password", "", "", false),
			field("confirm_password", "Confirm new password", "password", "", "", false),
			Button(Type("submit"), Class("btn btn-accent"), g.Text("Update")),
		),
	)
}

func databaseTab(p AdminPage) g.Node {
	return Div(Class("tab-panel"),
		Section(
			H2(g.Text("Backup")),
			P(g.Text("Download a gzip-compressed copy of the live database.")),
			A(Class("btn btn-accent"), Href(tabURL(TabDatabase)+"backup/"), g.Text("Download backup")),
			g.If(p.S3Enabled, postForm(tabURL(TabDatabase)+"archive/", p.CSRF,
				Button(Type("submit"), Class("btn"), g.Text("Archive to S3")),
			)),
		),
		Section(
			H2(g.Text("Restore")),
			P(Class("warning"), g.Text("Restoring replaces every post, solution, carousel image and message. Accepted: .db, .gz, .tar, .tar.gz, .tgz, .zip.")),
			Form(Method("post"), Action(tabURL(TabDatabase)+"restore/"), EncType("multipart/form-data"), Class("admin-form"),
				g.Attr("onsubmit", "return confirm('Replace the live database with this file?')"),
				csrfInput(p.CSRF),
				Input(Name("file"), Type("file"), Required()),
				Button(Type("submit"), Class("btn btn-danger"), g.Text("Restore")),
			),
			g.If(p.Restore != nil, restoreSummary(p.Restore)),
		),
	)
}

func restoreSummary(r *RestoreReport) g.Node {
	return Div(Class("restore-report"),
		P(g.Text(r.Message)),
		Dl(
			Dt(g.Text("File")), Dd(g.Text(r.Filename)),
			Dt(g.Text("Size")), Dd(g.Text(formatSize(r.Size))),
			Dt(g.Text("Tables")), Dd(g.Text(strings.Join(r.Tables, ", "))),
		),
	)
}

package views

import (
	"github.com/a-h/templ"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

var competencies = []service{
	{"glasses", "AR Technology Innovation", "Advanced augmented-reality technology for precision metal parts manufacturing"},
	{"flask", "R&D Strength", "Strong scientific research capabilities and technical innovation excellence"},
	{"network", "Intelligent Platform", "Comprehensive technology integration with intelligent platform development"},
	{"gear", "Precision Manufacturing", "High-precision mechanical components with advanced interaction methods"},
}

var aboutStats = []stat{
	{"15+", "Years Innovation"},
	{"100+", "Patents Filed"},
	{"50+", "R&D Engineers"},
	{"ISO 9001", "Quality Certified"},
}

// About renders the company page.
func About(p Page) templ.Component {
	body := g.Group{
		Section(Class("page-hero"),
			P(Class("hero-eyebrow"), g.Text("ABOUT")),
			H1(g.Text("KND")),
			P(Class("hero-lead"), g.Text("Leading intelligent hardware innovation with AR technology and precision manufacturing")),
			statsGrid(aboutStats),
		),
		Section(Class("overview"),
			H2(g.Text("Company Overview")),
			P(g.Text("Founded in 2010, Kind and Divine Technology Corp., Ltd. is an intelligent hardware company that develops augmented-reality precision metal parts and related mechanical components, interaction methods and contents, integrating comprehensive technology, intelligent platform construction and operation, intelligent hardware development and operation promotion.")),
			P(g.Text("The company has strong scientific and technological strength and strong scientific research strength. We are committed to innovation and excellence in the field of intelligent hardware.")),
		),
		Section(Class("competencies"),
			H2(g.Text("Our Core Competencies")),
			P(Class("section-lead"), g.Text("Our innovative technologies and research strengths driving intelligent hardware excellence")),
			Div(Class("services-grid"),
				g.Group(g.Map(competencies, func(s service) g.Node {
					return Div(Class("service-card"),
						Span(Class("icon icon-"+s.Icon)),
						H3(g.Text(s.Title)),
						P(g.Text(s.Description)),
					)
				})),
			),
		),
		Section(Class("contact-block"),
			H2(g.Text("Contact Information")),
			Div(Class("contact-cards"),
				contactCard("Email", p.Site.Email),
				contactCard("Phone", p.Site.Phone),
				contactCard("Address", p.Site.Address),
			),
		),
	}
	return component(layout(p, body))
}

func contactCard(label, value string) g.Node {
	if value == "" {
		return nil
	}
	return Div(Class("contact-card"),
		H3(g.Text(label)),
		P(g.Text(value)),
	)
}

func field(name, label, typ, value, errMsg string, required bool) g.Node {
	var input g.Node
	if typ == "textarea" {
		input = Textarea(ID(name), Name(name), Rows("6"), g.If(required, Required()), g.Text(value))
	} else {
		input = Input(ID(name), Name(name), Type(typ), Value(value), g.If(required, Required()))
	}
	return Div(Class("field"),
		Label(For(name), g.Text(label)),
		input,
		g.If(errMsg != "", Span(Class("field-error"), g.Text(errMsg))),
	)
}

func csrfInput(token string) g.Node {
	return Input(Type("hidden"), Name("_csrf"), Value(token))
}

// Contact renders the contact form, or the thank-you state after a send.
func Contact(p ContactPage) templ.Component {
	var form g.Node
	if p.Sent {
		form = Div(Class("alert alert-success"),
			H2(g.Text("Thank you!")),
			P(g.Text("Your message has been sent. Our team will get back to you soon.")),
		)
	} else {
		form = Form(Method("post"), Action("/contact/"), Class("contact-form"),
			csrfInput(p.CSRF),
			g.If(p.Failure != "", Div(Class("alert alert-error"), g.Text(p.Failure))),
			field("name", "Name", "text", p.Form.Name, p.Errors["name"], true),
			field("email", "Email", "email", p.Form.Email, p.Errors["email"], true),
			field("subject", "Subject", "text", p.Form.Subject, p.Errors["subject"], true),
			field("message", "Message", "textarea", p.Form.Message, p.Errors["message"], true),
			Button(Type("submit"), Class("btn btn-accent"), g.Text("Send Message")),
		)
	}
	body := g.Group{
		Section(Class("page-hero"),
			H1(g.Text("Contact Us")),
			P(Class("hero-lead"), g.Text("Have a project or need technical support? Reach out to our team.")),
		),
		Section(Class("contact-layout"),
			Div(Class("contact-info"),
				H2(g.Text("Get in touch")),
				contactList(p.Site),
			),
			form,
		),
	}
	return component(layout(p.Page, body))
}

// NotFound renders the 404 page.
func NotFound(p Page) templ.Component {
	p.Meta.Title = "Page not found"
	return component(layout(p, Section(Class("error-page"),
		H1(g.Text("404")),
		P(g.Text("The page you are looking for does not exist.")),
		A(Class("btn btn-accent"), Href("/"), g.Text("Back to home")),
	)))
}

// ServerError renders the 500 page.
func ServerError(p Page) templ.Component {
	p.Meta.Title = "Something went wrong"
	return component(layout(p, Section(Class("error-page"),
		H1(g.Text("500")),
		P(g.Text("Something went wrong on our side. Please try again later.")),
		A(Class("btn btn-accent"), Href("/"), g.Text("Back to home")),
	)))
}

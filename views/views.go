// Package views holds the default page components of the site. Pages are
// html/template files embedded in the binary and exposed as templ.Component
// values, so any of them can be replaced by generated templ code through the
// application's view functions.
package views

import (
	"context"
	"embed"
	"html/template"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/siteengine/crud"
	"github.com/eringen/siteengine/markdown"
	"github.com/eringen/siteengine/sitedata"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"currency":   sitedata.FormatCurrency,
	"join":       strings.Join,
	"pathEscape": url.PathEscape,
	"stamp": func(t time.Time) string {
		return t.Local().Format("Jan 2, 2006 15:04")
	},
	"lines": func(s []string) string { return strings.Join(s, "\n") },
}).ParseFS(templateFS, "templates/*.html"))

func component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return pages.ExecuteTemplate(w, name, data)
	})
}

// Site holds the site-wide settings every page needs.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
	JSONLD      template.JS
}

type page struct {
	Site Site
	Meta PageMeta
	Data any
}

// ContactForm is the state of the contact section after a submission.
type ContactForm struct {
	Values sitedata.NewContactSubmission
	Sent   bool
	Error  string
}

// HomePage is the single-page landing view with every public section.
type HomePage struct {
	Site         Site
	CSRF         string
	Services     []sitedata.Service
	Projects     []sitedata.Project
	Pricing      []sitedata.ServicePricing
	Posts        []sitedata.BlogPost
	Testimonials []sitedata.Testimonial
	Team         []sitedata.TeamMember
	Contact      ContactForm
}

func Home(p HomePage) templ.Component {
	return component("home", page{
		Site: p.Site,
		Meta: PageMeta{
			Title:       p.Site.Name,
			Description: p.Site.Description,
			URL:         BuildURL(p.Site.URL),
			OGType:      "website",
			JSONLD:      WebsiteJsonLD(p.Site),
		},
		Data: p,
	})
}

// PostPage shows one blog post.
type PostPage struct {
	Site    Site
	Post    sitedata.BlogPost
	Related []sitedata.BlogPost
}

type articleData struct {
	PostPage
	Body template.HTML
}

func Post(p PostPage) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		body, err := markdown.Render(p.Post.Content)
		if err != nil {
			return err
		}
		meta := PageMeta{
			Title:       firstNonEmpty(p.Post.MetaTitle, p.Post.Title) + " | " + p.Site.Name,
			Description: firstNonEmpty(p.Post.MetaDescription, p.Post.Excerpt),
			URL:         BuildURL(p.Site.URL, "blog", p.Post.Slug),
			OGType:      "article",
			Image:       p.Post.Image,
			JSONLD:      BlogPostingJsonLD(p.Post, p.Site),
		}
		return pages.ExecuteTemplate(w, "post", page{
			Site: p.Site,
			Meta: meta,
			Data: articleData{PostPage: p, Body: template.HTML(body)},
		})
	})
}

// ProjectPage shows one portfolio entry.
type ProjectPage struct {
	Site    Site
	Project sitedata.Project
	More    []sitedata.Project
}

type projectData struct {
	ProjectPage
	Body template.HTML
}

func Project(p ProjectPage) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		body, err := markdown.Render(firstNonEmpty(p.Project.DetailedDescription, p.Project.Description))
		if err != nil {
			return err
		}
		meta := PageMeta{
			Title:       p.Project.Title + " | " + p.Site.Name,
			Description: p.Project.Description,
			URL:         BuildURL(p.Site.URL, "portfolio", p.Project.ID),
			OGType:      "article",
			Image:       p.Project.Image,
		}
		return pages.ExecuteTemplate(w, "project", page{
			Site: p.Site,
			Meta: meta,
			Data: projectData{ProjectPage: p, Body: template.HTML(body)},
		})
	})
}

func Privacy(site Site) templ.Component {
	return component("privacy", page{
		Site: site,
		Meta: PageMeta{
			Title:  "Privacy Policy | " + site.Name,
			URL:    BuildURL(site.URL, "privacy"),
			OGType: "website",
		},
	})
}

func NotFound() templ.Component {
	return component("notfound", page{Meta: PageMeta{Title: "Page not found"}})
}

func ServerError() templ.Component {
	return component("servererror", page{Meta: PageMeta{Title: "Something went wrong"}})
}

// LoginPage is the admin sign-in form.
type LoginPage struct {
	Site   Site
	Failed bool
	CSRF   string
}

func AdminLogin(p LoginPage) templ.Component {
	return component("login", adminPage("Sign in", p.Site, p.CSRF, p))
}

// DashboardPage summarises content and activity for administrators.
type DashboardPage struct {
	Site       Site
	CSRF       string
	Counts     sitedata.Counts
	Usage      []sitedata.ToolCount
	Recent     []sitedata.ContactSubmission
	HasNewLead bool
	Pricing    []sitedata.ServicePricing
	Message    string
}

func AdminDashboard(p DashboardPage) templ.Component {
	return component("dashboard", adminPage("Dashboard", p.Site, p.CSRF, p))
}

// SubmissionsPage lists contact leads.
type SubmissionsPage struct {
	Site        Site
	CSRF        string
	Submissions []sitedata.ContactSubmission
}

func AdminSubmissions(p SubmissionsPage) templ.Component {
	return component("submissions", adminPage("Contact submissions", p.Site, p.CSRF, p))
}

// ManagePage is the management view shared by every entity kind: the list,
// the create/edit form, the delete confirmation and the feedback banner.
type ManagePage struct {
	Site  Site
	CSRF  string
	Title string
	// Label is the singular noun used on buttons, e.g. "post".
	Label string
	// Base is the path the actions hang off, e.g. "/admin/blog".
	Base      string
	Rows      []Row
	CanCreate bool
	CanUpdate bool
	CanDelete bool
	Loading   bool
	Feedback  *crud.Feedback
	Form      *Form
	Confirm   *Confirm
	Filter    *Filter
	// Assist enables the AI writing helpers on the form.
	Assist bool
}

// Row is one item in a management list.
type Row struct {
	ID     string
	Title  string
	Detail string
	Image  string
	Link   string
}

// Form is an open create or edit form.
type Form struct {
	ID     string
	Fields []Field
}

// Editing reports whether the form edits an existing item.
func (f *Form) Editing() bool { return f.ID != "" }

// Field types understood by the management form.
const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldMarkdown = "markdown"
	FieldLines    = "lines"
	FieldCheckbox = "checkbox"
	FieldNumber   = "number"
	FieldDate     = "date"
	FieldEmail    = "email"
	FieldSelect   = "select"
	FieldImage    = "image"
)

// Field is one input of a management form.
type Field struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Checked  bool
	Options  []string
	Hint     string
	Required bool
}

// Confirm asks whether the item with ID should really be deleted.
type Confirm struct {
	ID     string
	Prompt string
}

// Filter narrows a list by type and free-text search.
type Filter struct {
	Type   string
	Search string
	Types  []string
}

func AdminManage(p ManagePage) templ.Component {
	return component("manage", adminPage(p.Title, p.Site, p.CSRF, p))
}

type admin struct {
	page
	CSRF string
}

func adminPage(title string, site Site, csrf string, data any) admin {
	return admin{
		page: page{
			Site: site,
			Meta: PageMeta{Title: title + " | " + site.Name},
			Data: data,
		},
		CSRF: csrf,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

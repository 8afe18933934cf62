package siteengine

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/siteengine/sitedata"
	"github.com/eringen/siteengine/views"
)

const contactRequired = "All fields are required."

func (a *App) homePage(c echo.Context) views.HomePage {
	return views.HomePage{
		Site:         a.site(),
		CSRF:         CsrfToken(c),
		Services:     a.Store.Services.All(),
		Projects:     a.Store.Projects.All(),
		Pricing:      a.Store.Pricing.All(),
		Posts:        a.Store.Blog.All(),
		Testimonials: a.Store.Testimonials.All(),
		Team:         a.Store.Team.All(),
		Contact:      views.ContactForm{Sent: c.QueryParam("sent") == "1"},
	}
}

func (a *App) handleHome(c echo.Context) error {
	return Render(c, a.Views.Home(a.homePage(c)))
}

func (a *App) handleContactForm(c echo.Context) error {
	n := sitedata.NewContactSubmission{
		Name:          c.FormValue("name"),
		Organization:  c.FormValue("organization"),
		Email:         c.FormValue("email"),
		ContactNumber: c.FormValue("contactNumber"),
		Message:       c.FormValue("message"),
	}
	_, err := a.Store.AddContactSubmission(c.Request().Context(), n)
	if err == nil {
		return c.Redirect(http.StatusSeeOther, "/?sent=1#contact")
	}
	page := a.homePage(c)
	page.Contact = views.ContactForm{Values: n, Error: contactRequired}
	code := http.StatusBadRequest
	if !errors.Is(err, sitedata.ErrInvalidSubmission) {
		a.Logger.Error("contact submission failed", zap.Error(err))
		page.Contact.Error = "Sorry, your message could not be sent. Please try again."
		code = http.StatusInternalServerError
	}
	return RenderStatus(c, code, a.Views.Home(page))
}

func (a *App) handlePost(c echo.Context) error {
	post, ok := a.Store.Blog.Get(c.Param("slug"))
	if !ok {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	return Render(c, a.Views.Post(views.PostPage{
		Site:    a.site(),
		Post:    post,
		Related: views.RelatedPosts(post, a.Store.Blog.All(), 3),
	}))
}

func (a *App) handleProject(c echo.Context) error {
	project, ok := a.Store.Projects.Get(c.Param("id"))
	if !ok {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	var more []sitedata.Project
	for _, p := range a.Store.Projects.All() {
		if p.ID != project.ID && len(more) < 3 {
			more = append(more, p)
		}
	}
	return Render(c, a.Views.Project(views.ProjectPage{Site: a.site(), Project: project, More: more}))
}

func (a *App) handlePrivacy(c echo.Context) error {
	return Render(c, a.Views.Privacy(a.site()))
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, a.Store.Blog.All(), a.Store.Projects.All())
}

func (a *App) handleFeed(c echo.Context) error {
	return a.renderRSS(c, a.Store.Blog.All())
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/#blog")
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Disallow: /admin/\n")
	b.WriteString("Disallow: /api/\n")
	fmt.Fprintf(&b, "Sitemap: %s\n", strings.TrimRight(a.Config.URL, "/")+"/sitemap.xml")
	return c.String(http.StatusOK, b.String())
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		if code >= 500 {
			a.Logger.Error("api error", zap.String("path", c.Request().URL.Path), zap.Error(err))
		}
		a.Echo.DefaultHTTPErrorHandler(err, c)
		return
	}
	if code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	if code >= 500 {
		a.Logger.Error("server error", zap.String("path", c.Request().URL.Path), zap.Error(err))
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

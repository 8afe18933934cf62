package siteengine

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eringen/siteengine/sitedata"
	"github.com/eringen/siteengine/views"
)

func (a *App) setupAdminRoutes() {
	e := a.Echo
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", a.handleAdminLogout)

	g := e.Group("/admin", a.requireAdmin)
	g.GET("/submissions/", a.handleSubmissions)
	g.POST("/submissions/delete/:id/", a.handleSubmissionDelete)
	g.GET("/metrics/", echo.WrapHandler(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	g.GET("/images/", a.handleImageList)
	g.POST("/images/", a.handleImageUpload)
	g.POST("/images/delete/*", a.handleImageDelete)

	g.POST("/ai/draft/", a.handleAdminAIDraft)
	g.POST("/ai/improve/", a.handleAdminAIImprove)
	g.POST("/ai/excerpt/", a.handleAdminAIExcerpt)
	g.POST("/ai/seo/", a.handleAdminAISEO)
	g.POST("/ai/image/", a.handleAdminAIImage)

	a.registerResources(g)
}

// requireAdmin sends anonymous visitors to the login page. Endpoints called
// from scripts get a 401 instead of a redirect.
func (a *App) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if IsAdmin(c) {
			return next(c)
		}
		path := c.Request().URL.Path
		if strings.HasPrefix(path, "/admin/ai/") || strings.HasPrefix(path, "/admin/images/") {
			return jsonError(c, http.StatusUnauthorized, "Please sign in again.")
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
}

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(views.LoginPage{Site: a.site(), CSRF: CsrfToken(c)}))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(views.LoginPage{
		Site:   a.site(),
		Failed: true,
		CSRF:   CsrfToken(c),
	}))
}

func (a *App) handleAdminLogout(c echo.Context) error {
	a.dropConsole(c)
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	cs, err := a.consoleFor(c)
	if err != nil {
		return err
	}
	cs.enter("dashboard")
	recent := a.Store.Submissions()
	if len(recent) > 5 {
		recent = recent[:5]
	}
	return Render(c, a.Views.AdminDashboard(views.DashboardPage{
		Site:       a.site(),
		CSRF:       CsrfToken(c),
		Counts:     a.Store.Counts(),
		Usage:      a.Store.ToolUsage(),
		Recent:     recent,
		HasNewLead: a.Store.HasNewSubmission(),
		Pricing:    a.Store.Pricing.All(),
		Message:    msg,
	}))
}

func (a *App) handleSubmissions(c echo.Context) error {
	cs, err := a.consoleFor(c)
	if err != nil {
		return err
	}
	cs.enter("submissions")
	a.Store.ClearNewSubmission()
	return Render(c, a.Views.AdminSubmissions(views.SubmissionsPage{
		Site:        a.site(),
		CSRF:        CsrfToken(c),
		Submissions: a.Store.Submissions(),
	}))
}

func (a *App) handleSubmissionDelete(c echo.Context) error {
	err := a.Store.DeleteSubmission(c.Request().Context(), c.Param("id"))
	if errors.Is(err, sitedata.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/submissions/")
}

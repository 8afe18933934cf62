package siteengine

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/siteengine/aitools"
	"github.com/eringen/siteengine/sitedata"
)

func (a *App) setupAPIRoutes() {
	g := a.Echo.Group("/api", a.corsMiddleware())

	g.GET("/blog", func(c echo.Context) error { return c.JSON(http.StatusOK, a.Store.Blog.All()) })
	g.GET("/blog/:slug", a.apiPost)
	g.GET("/projects", func(c echo.Context) error { return c.JSON(http.StatusOK, a.Store.Projects.All()) })
	g.GET("/services", func(c echo.Context) error { return c.JSON(http.StatusOK, a.Store.Services.All()) })
	g.GET("/team", func(c echo.Context) error { return c.JSON(http.StatusOK, a.Store.Team.All()) })
	g.GET("/testimonials", func(c echo.Context) error { return c.JSON(http.StatusOK, a.Store.Testimonials.All()) })
	g.GET("/pricing", func(c echo.Context) error { return c.JSON(http.StatusOK, a.Store.Pricing.All()) })

	g.POST("/contact", a.apiContact)
	g.POST("/usage/:tool", a.apiUsage)

	ai := g.Group("/ai")
	ai.POST("/strategy", a.apiStrategy)
	ai.POST("/website-analysis", toolHandler(a, sitedata.WebsiteAnalyzer, func(ctx context.Context, req struct {
		URL string `json:"url"`
	}) (any, error) {
		return a.AI.AnalyzeWebsite(ctx, req.URL)
	}))
	ai.POST("/ad-copy", toolHandler(a, sitedata.AdCopyGenerator, func(ctx context.Context, req aitools.AdCopyRequest) (any, error) {
		return a.AI.AdCopy(ctx, req)
	}))
	ai.POST("/social-posts", toolHandler(a, sitedata.SocialPostGenerator, func(ctx context.Context, req aitools.SocialPostRequest) (any, error) {
		return a.AI.SocialPosts(ctx, req)
	}))
	ai.POST("/blog-ideas", toolHandler(a, sitedata.BlogIdeaGenerator, func(ctx context.Context, req struct {
		Topic string `json:"topic"`
	}) (any, error) {
		return a.AI.BlogIdeas(ctx, req.Topic)
	}))
	ai.POST("/keyword-clusters", toolHandler(a, sitedata.KeywordClusterGenerator, func(ctx context.Context, req struct {
		Keyword string `json:"keyword"`
	}) (any, error) {
		return a.AI.KeywordClusters(ctx, req.Keyword)
	}))
}

func (a *App) apiPost(c echo.Context) error {
	post, ok := a.Store.Blog.Get(c.Param("slug"))
	if !ok {
		return jsonError(c, http.StatusNotFound, "Post not found.")
	}
	return c.JSON(http.StatusOK, post)
}

func (a *App) apiContact(c echo.Context) error {
	var n sitedata.NewContactSubmission
	if err := c.Bind(&n); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body.")
	}
	sub, err := a.Store.AddContactSubmission(c.Request().Context(), n)
	if errors.Is(err, sitedata.ErrInvalidSubmission) {
		return jsonError(c, http.StatusBadRequest, contactRequired)
	}
	if err != nil {
		a.Logger.Error("contact submission failed", zap.Error(err))
		return jsonError(c, http.StatusInternalServerError, "Failed to submit form.")
	}
	return c.JSON(http.StatusCreated, sub)
}

func (a *App) apiUsage(c echo.Context) error {
	if err := a.Store.LogToolUsage(sitedata.ToolName(c.Param("tool"))); err != nil {
		return jsonError(c, http.StatusBadRequest, "Unknown tool.")
	}
	return c.NoContent(http.StatusNoContent)
}

// allowTool applies the per-IP tool rate limit and counts the call.
func (a *App) allowTool(c echo.Context, tool sitedata.ToolName) bool {
	if !a.toolLimiter.Allow(c.RealIP()) {
		return false
	}
	if err := a.Store.LogToolUsage(tool); err != nil {
		a.Logger.Warn("tool usage not counted", zap.String("tool", string(tool)), zap.Error(err))
	}
	return true
}

// toolError maps an AI failure to a JSON error response.
func (a *App) toolError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, aitools.ErrEmptyPrompt):
		return jsonError(c, http.StatusBadRequest, "Please fill in the required fields.")
	case errors.Is(err, aitools.ErrNotConfigured):
		return jsonError(c, http.StatusServiceUnavailable, "AI tools are not available right now.")
	case errors.Is(err, aitools.ErrNoImage):
		return jsonError(c, http.StatusUnprocessableEntity, "The model did not return an image. Try rephrasing your prompt.")
	case errors.Is(err, context.Canceled):
		return nil
	default:
		return jsonError(c, http.StatusBadGateway, "The AI service failed to respond. Please try again.")
	}
}

// toolHandler binds a JSON request of type R, runs fn and writes its result.
func toolHandler[R any](a *App, tool sitedata.ToolName, fn func(context.Context, R) (any, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req R
		if err := c.Bind(&req); err != nil {
			return jsonError(c, http.StatusBadRequest, "Invalid request body.")
		}
		if !a.allowTool(c, tool) {
			return jsonError(c, http.StatusTooManyRequests, "Too many requests. Please wait a minute and try again.")
		}
		out, err := fn(c.Request().Context(), req)
		if err != nil {
			return a.toolError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	}
}

// apiStrategy streams the generated strategy as plain text. Errors before
// the first chunk become JSON errors; later ones end the stream.
func (a *App) apiStrategy(c echo.Context) error {
	var req struct {
		Idea string `json:"idea"`
	}
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body.")
	}
	if !a.allowTool(c, sitedata.StrategyGenerator) {
		return jsonError(c, http.StatusTooManyRequests, "Too many requests. Please wait a minute and try again.")
	}

	res := c.Response()
	started := false
	for chunk, err := range a.AI.Strategy(c.Request().Context(), req.Idea) {
		if err != nil {
			if !started {
				return a.toolError(c, err)
			}
			a.Logger.Warn("strategy stream interrupted", zap.Error(err))
			return nil
		}
		if !started {
			res.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
			res.Header().Set("X-Content-Type-Options", "nosniff")
			res.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := res.Write([]byte(chunk)); err != nil {
			return nil
		}
		res.Flush()
	}
	if !started {
		return c.String(http.StatusOK, "")
	}
	return nil
}

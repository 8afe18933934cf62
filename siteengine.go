// Package siteengine is the web application of an agency marketing site built
// with Go, Echo and templ. It serves the public single-page site, a JSON API
// for the interactive tools and an admin panel where every content
// collection is managed through a CRUD manager bound to the site data store.
//
// Embedders may replace any page through ViewFuncs; siteengine owns the
// handlers, middleware, persistence and AI wiring.
package siteengine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/eringen/siteengine/aitools"
	"github.com/eringen/siteengine/blob"
	"github.com/eringen/siteengine/docstore"
	"github.com/eringen/siteengine/sitedata"
	"github.com/eringen/siteengine/views"
)

// ViewFuncs holds the components the app renders. A nil field falls back to
// the default page from the views package.
type ViewFuncs struct {
	Home             func(p views.HomePage) templ.Component
	Post             func(p views.PostPage) templ.Component
	Project          func(p views.ProjectPage) templ.Component
	Privacy          func(site views.Site) templ.Component
	AdminLogin       func(p views.LoginPage) templ.Component
	AdminDashboard   func(p views.DashboardPage) templ.Component
	AdminManage      func(p views.ManagePage) templ.Component
	AdminSubmissions func(p views.SubmissionsPage) templ.Component
	NotFound         func() templ.Component
	ServerError      func() templ.Component
}

// DefaultViews returns the built-in pages.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:             views.Home,
		Post:             views.Post,
		Project:          views.Project,
		Privacy:          views.Privacy,
		AdminLogin:       views.AdminLogin,
		AdminDashboard:   views.AdminDashboard,
		AdminManage:      views.AdminManage,
		AdminSubmissions: views.AdminSubmissions,
		NotFound:         views.NotFound,
		ServerError:      views.ServerError,
	}
}

func (v *ViewFuncs) fillDefaults() {
	d := DefaultViews()
	if v.Home == nil {
		v.Home = d.Home
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.Project == nil {
		v.Project = d.Project
	}
	if v.Privacy == nil {
		v.Privacy = d.Privacy
	}
	if v.AdminLogin == nil {
		v.AdminLogin = d.AdminLogin
	}
	if v.AdminDashboard == nil {
		v.AdminDashboard = d.AdminDashboard
	}
	if v.AdminManage == nil {
		v.AdminManage = d.AdminManage
	}
	if v.AdminSubmissions == nil {
		v.AdminSubmissions = d.AdminSubmissions
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
}

// App is the central application. It wires together the store, the
// handlers, the middleware and the views.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *sitedata.Store
	Views  ViewFuncs
	Logger *zap.Logger
	AI     *aitools.Client
	Blobs  blob.Store

	db           docstore.Store
	registry     *prometheus.Registry
	httpRequests *prometheus.CounterVec
	loginLimiter *RateLimiter
	toolLimiter  *RateLimiter
	consoles     *consoles
	customRoutes []func(*App)
	staticDir    string
	lastModified atomic.Int64
	initialized  bool
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, v ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	v.fillDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     v,
		Logger:    zap.NewNop(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens persistence, loads the content and registers middleware and
// routes. Start calls it; tests call it to serve a.Echo directly.
func (a *App) Init(ctx context.Context) error {
	if a.initialized {
		return nil
	}
	if a.Config.AdminPassword == "" {
		return errors.New("siteengine: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return errors.New("siteengine: SessionSecret is required")
	}

	if a.db == nil {
		db, err := openDocStore(ctx, a.Config)
		if err != nil {
			return fmt.Errorf("siteengine: init persistence: %w", err)
		}
		a.db = db
	}
	if a.Blobs == nil {
		bs, err := openBlobStore(ctx, a.Config)
		if err != nil {
			return fmt.Errorf("siteengine: init blob store: %w", err)
		}
		a.Blobs = bs
	}
	if a.AI == nil {
		ai, err := aitools.New(ctx, a.Config.GenAIAPIKey,
			aitools.WithModel(a.Config.GenAIModel),
			aitools.WithImageModel(a.Config.ImageModel),
			aitools.WithLogger(a.Logger),
		)
		if err != nil {
			return fmt.Errorf("siteengine: init ai: %w", err)
		}
		a.AI = ai
	}
	if a.registry == nil {
		a.registry = prometheus.NewRegistry()
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	a.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "siteengine_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"method", "route", "status"})
	if err := a.registry.Register(a.httpRequests); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return fmt.Errorf("siteengine: register metrics: %w", err)
		}
		a.httpRequests = are.ExistingCollector.(*prometheus.CounterVec)
	}

	a.Store = sitedata.New(a.db,
		sitedata.WithLogger(a.Logger),
		sitedata.WithMetrics(a.registry),
	)
	a.Store.Load(ctx)
	a.touch()
	a.Store.Subscribe(func(kind string) {
		a.touch()
		a.Logger.Debug("content changed", zap.String("kind", kind))
	})

	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.toolLimiter = NewRateLimiter(a.Config.ToolRateLimit, a.Config.ToolRateWindow)
	a.consoles = newConsoles(sessionMaxAge)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the app and serves until ctx is cancelled, then shuts
// the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("listening", zap.String("addr", a.Config.Addr), zap.String("url", a.Config.URL))
		errCh <- a.Echo.Start(a.Config.Addr)
	}()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Logger.Info("shutting down")
		return a.Echo.Shutdown(shutdownCtx)
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(EmbeddedAssets, "assets")
	e.GET("/assets/*", echo.WrapHandler(http.StripPrefix("/assets/", http.FileServer(http.FS(assets)))))
	e.Static("/public", a.staticDir)
	e.GET("/media/*", a.handleMedia)

	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.POST("/contact/", a.handleContactForm)
	e.GET("/blog", handleBlogRedirect)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/portfolio/:id/", a.handleProject)
	e.GET("/privacy/", a.handlePrivacy)

	a.setupAPIRoutes()
	a.setupAdminRoutes()
}

// Close releases the persistence layer and stops background work.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.toolLimiter != nil {
		a.toolLimiter.Stop()
	}
	if a.consoles != nil {
		a.consoles.Close()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *App) touch() { a.lastModified.Store(time.Now().UTC().Unix()) }

// LastModified is the time content last changed, or the load time.
func (a *App) LastModified() time.Time { return time.Unix(a.lastModified.Load(), 0).UTC() }

func (a *App) site() views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
	}
}

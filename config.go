package siteengine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eringen/siteengine/aitools"
	"github.com/eringen/siteengine/blob"
	"github.com/eringen/siteengine/crud"
	"github.com/eringen/siteengine/docstore"
)

// Persistence drivers.
const (
	PersistenceSQLite   = "sqlite"
	PersistencePostgres = "postgres"
	PersistenceMemory   = "memory"
)

// Blob drivers.
const (
	BlobFS = "fs"
	BlobS3 = "s3"
)

// SiteConfig holds all configuration for a site.
type SiteConfig struct {
	Name        string // Site name (default "Agency")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Organisation name for JSON-LD

	Addr string // Listen address (default ":3000")

	Persistence  string // sqlite, postgres or memory (default sqlite)
	DatabasePath string // SQLite path (default "data/site.db")
	PostgresDSN  string

	Blob       string // fs or s3 (default fs)
	UploadsDir string // Filesystem blob root (default "data/media")
	S3         blob.S3Config

	GenAIAPIKey string // Empty disables the AI tools
	GenAIModel  string // default aitools.DefaultModel
	ImageModel  string // default aitools.DefaultImageModel

	FeedbackDelay  time.Duration // How long admin feedback stays (default 4s)
	AllowedOrigins []string      // CORS origins for /api (default: same origin only)

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	ToolRateLimit  int           // AI tool calls per IP per window (default 10)
	ToolRateWindow time.Duration // default 1 minute
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Agency"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Persistence == "" {
		c.Persistence = PersistenceSQLite
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/site.db"
	}
	if c.Blob == "" {
		c.Blob = BlobFS
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "data/media"
	}
	if c.GenAIModel == "" {
		c.GenAIModel = aitools.DefaultModel
	}
	if c.ImageModel == "" {
		c.ImageModel = aitools.DefaultImageModel
	}
	if c.FeedbackDelay == 0 {
		c.FeedbackDelay = crud.DefaultFeedbackDelay
	}
	if c.ToolRateLimit == 0 {
		c.ToolRateLimit = 10
	}
	if c.ToolRateWindow == 0 {
		c.ToolRateWindow = time.Minute
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger sets the logger shared by the app and its components.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.Logger = l
		}
	}
}

// WithDocStore uses db instead of opening the configured persistence driver.
// The app closes it on Close.
func WithDocStore(db docstore.Store) Option {
	return func(a *App) {
		a.db = db
	}
}

// WithBlobStore uses s instead of the configured blob driver.
func WithBlobStore(s blob.Store) Option {
	return func(a *App) {
		a.Blobs = s
	}
}

// WithAI uses c for the AI tools instead of building one from the API key.
func WithAI(c *aitools.Client) Option {
	return func(a *App) {
		a.AI = c
	}
}

// WithRegistry registers the app metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = reg
	}
}

// Package spacetraveling serves the Space Traveling blog. Posts come from a
// headless content API or a local SQLite content store and are rendered as
// static pages that regenerate after a fixed staleness window.
//
// The App wires together the content client, page cache, handlers and
// middleware. Build writes the same pages to a directory instead.
package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/content/prismic"
	"github.com/eringen/spacetraveling/views"
)

// App is the central spacetraveling application.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Log     *logrus.Logger
	Store   *Store
	Fetcher *content.Fetcher
	Cache   *PageCache

	client       content.Client
	limiter      *Limiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a new App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Log:       logrus.StandardLogger(),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates the configuration, connects the content client and sets up
// the cache, middleware and routes. Start calls it; call it directly to
// serve the App through another server or to Build.
func (a *App) Init() error {
	if err := a.Config.Validate(); err != nil {
		return err
	}
	level, _ := logrus.ParseLevel(a.Config.LogLevel)
	a.Log.SetLevel(level)

	if a.client == nil {
		client, err := a.openClient()
		if err != nil {
			return err
		}
		a.client = client
	}
	a.Fetcher = content.NewFetcher(a.client, a.Log)
	a.Cache = NewPageCache(a.Fetcher, a.Config.Revalidate, a.Config.BlockingFallback, a.Log)
	a.limiter = NewLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) openClient() (content.Client, error) {
	if a.Config.APIEndpoint != "" {
		a.Log.WithField("endpoint", a.Config.APIEndpoint).Info("Reading content from API")
		return prismic.New(a.Config.APIEndpoint, prismic.WithAccessToken(a.Config.AccessToken)), nil
	}
	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("spacetraveling: init store: %w", err)
	}
	a.Store = store
	a.Log.WithField("path", a.Config.DatabasePath).Info("Reading content from SQLite store")
	return store, nil
}

// Start initializes the App, generates every post ahead of time and starts
// the server.
func (a *App) Start(ctx context.Context) error {
	if a.Config.SessionSecret == "" {
		return errors.New("spacetraveling: SessionSecret is required")
	}
	if err := a.Init(); err != nil {
		return err
	}
	if _, err := a.Cache.Warm(ctx); err != nil {
		return fmt.Errorf("spacetraveling: generate pages: %w", err)
	}

	a.Log.WithField("addr", a.Config.Addr).Info("Starting server")
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets := a.assets()
	e.StaticFS("/public", assets)
	e.GET("/favicon.svg", echo.StaticFileHandler("favicon.svg", assets))
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/post/:slug/", a.handlePost)

	e.GET("/api/preview", a.handlePreview)
	e.GET(views.ExitPreviewPath, a.handleExitPreview)
}

// assets layers the static directory over the embedded defaults.
func (a *App) assets() layeredFS {
	embedded, _ := fs.Sub(EmbeddedAssets, "embedded")
	return layeredFS{os.DirFS(a.staticDir), embedded}
}

type layeredFS []fs.FS

func (l layeredFS) Open(name string) (fs.File, error) {
	var err error
	for _, fsys := range l {
		var f fs.File
		if f, err = fsys.Open(name); err == nil {
			return f, nil
		}
	}
	return nil, err
}

// Shutdown stops the server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

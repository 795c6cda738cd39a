package spacetraveling

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/views"
)

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name        string // Site name (default "Space Traveling")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Locale      string // Date and label locale (default "pt-BR")

	Addr string // Listen address (default ":3000")

	APIEndpoint  string // Content API endpoint; empty reads the SQLite store
	AccessToken  string // Content API access token
	DatabasePath string // SQLite content store path (default "data/content.db")

	Revalidate       time.Duration // Staleness window before a page is regenerated (default 24h)
	BlockingFallback bool          // Build unknown pages during the request instead of showing a loading page
	RefreshAfter     int           // Seconds before the loading page reloads (default 1)

	SessionSecret string // Required by Start: preview session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	CommentsRepo string // GitHub repo for utterances comments; empty disables them
	LogLevel     string // logrus level (default "info")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Space Traveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Locale == "" {
		c.Locale = views.DefaultLocale
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/content.db"
	}
	if c.Revalidate == 0 {
		c.Revalidate = 24 * time.Hour
	}
	if c.RefreshAfter == 0 {
		c.RefreshAfter = 1
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports configuration errors that would break the site at runtime.
func (c *SiteConfig) Validate() error {
	if c.Revalidate < 0 {
		return errors.New("spacetraveling: Revalidate must not be negative")
	}
	if !views.SupportedLocale(c.Locale) {
		return fmt.Errorf("spacetraveling: unsupported locale %q", c.Locale)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("spacetraveling: %w", err)
	}
	return nil
}

// View returns the template-facing subset of the configuration.
func (c SiteConfig) View() views.SiteConfig {
	return views.SiteConfig{
		Name:         c.Name,
		URL:          c.URL,
		Description:  c.Description,
		Locale:       c.Locale,
		CommentsRepo: c.CommentsRepo,
		RefreshAfter: c.RefreshAfter,
	}
}

// Duration is a time.Duration written as a string ("24h") in config files.
type Duration time.Duration

func (d Duration) MarshalText() (text []byte, err error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	p, err := time.ParseDuration(string(text))
	*d = Duration(p)
	return err
}

// fileConfig is the TOML shape of a config file. Unset keys leave the
// corresponding SiteConfig field untouched.
type fileConfig struct {
	Name             *string   `toml:"name"`
	URL              *string   `toml:"url"`
	Description      *string   `toml:"description"`
	Locale           *string   `toml:"locale"`
	Addr             *string   `toml:"addr"`
	APIEndpoint      *string   `toml:"api_endpoint"`
	AccessToken      *string   `toml:"access_token"`
	DatabasePath     *string   `toml:"database_path"`
	Revalidate       *Duration `toml:"revalidate"`
	BlockingFallback *bool     `toml:"blocking_fallback"`
	RefreshAfter     *int      `toml:"refresh_after"`
	SessionSecret    *string   `toml:"session_secret"`
	CookieSecure     *bool     `toml:"cookie_secure"`
	CommentsRepo     *string   `toml:"comments_repo"`
	LogLevel         *string   `toml:"log_level"`
}

// LoadConfigFile overlays the TOML file at path onto cfg.
// It is not an error if the file does not exist.
func LoadConfigFile(path string, cfg *SiteConfig) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("spacetraveling: read config: %w", err)
	}
	var fc fileConfig
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("spacetraveling: parse config %s: %w", path, err)
	}
	setString(&cfg.Name, fc.Name)
	setString(&cfg.URL, fc.URL)
	setString(&cfg.Description, fc.Description)
	setString(&cfg.Locale, fc.Locale)
	setString(&cfg.Addr, fc.Addr)
	setString(&cfg.APIEndpoint, fc.APIEndpoint)
	setString(&cfg.AccessToken, fc.AccessToken)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.SessionSecret, fc.SessionSecret)
	setString(&cfg.CommentsRepo, fc.CommentsRepo)
	setString(&cfg.LogLevel, fc.LogLevel)
	if fc.Revalidate != nil {
		cfg.Revalidate = time.Duration(*fc.Revalidate)
	}
	if fc.BlockingFallback != nil {
		cfg.BlockingFallback = *fc.BlockingFallback
	}
	if fc.RefreshAfter != nil {
		cfg.RefreshAfter = *fc.RefreshAfter
	}
	if fc.CookieSecure != nil {
		cfg.CookieSecure = *fc.CookieSecure
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
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

// WithClient replaces the content store client the App reads from.
func WithClient(c content.Client) Option {
	return func(a *App) {
		a.client = c
	}
}

// WithLogger sets the logger used by the App and its components.
func WithLogger(l *logrus.Logger) Option {
	return func(a *App) {
		a.Log = l
	}
}

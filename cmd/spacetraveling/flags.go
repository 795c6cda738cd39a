package main

import (
	"flag"

	"github.com/facebookgo/flagenv"

	"github.com/eringen/spacetraveling"
)

const envPrefix = "SPACETRAVELING_"

// options holds the flags shared by every command. Flags default to zero so
// that only values given on the command line or in the environment override
// the config file.
type options struct {
	configPath string
	static     string
	cfg        spacetraveling.SiteConfig
}

func newFlagSet(name string) (*flag.FlagSet, *options) {
	o := &options{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "spacetraveling.toml", "TOML config file.")
	fs.StringVar(&o.static, "static", "public", "Directory of static assets served under /public.")
	fs.StringVar(&o.cfg.Name, "name", "", "Site name.")
	fs.StringVar(&o.cfg.URL, "url", "", "Canonical site URL.")
	fs.StringVar(&o.cfg.Description, "description", "", "Site description.")
	fs.StringVar(&o.cfg.Locale, "locale", "", "Date and label locale (pt-BR or en-US).")
	fs.StringVar(&o.cfg.Addr, "addr", "", "Listen address.")
	fs.StringVar(&o.cfg.APIEndpoint, "api-endpoint", "", "Content API endpoint; empty reads the SQLite store.")
	fs.StringVar(&o.cfg.AccessToken, "access-token", "", "Content API access token.")
	fs.StringVar(&o.cfg.DatabasePath, "db", "", "SQLite content store path.")
	fs.DurationVar(&o.cfg.Revalidate, "revalidate", 0, "Age after which a page is regenerated.")
	fs.BoolVar(&o.cfg.BlockingFallback, "blocking-fallback", false, "Build unknown pages during the request instead of showing a loading page.")
	fs.IntVar(&o.cfg.RefreshAfter, "refresh-after", 0, "Seconds before the loading page reloads.")
	fs.StringVar(&o.cfg.SessionSecret, "session-secret", "", "Preview session secret.")
	fs.BoolVar(&o.cfg.CookieSecure, "cookie-secure", false, "Mark the preview cookie Secure.")
	fs.StringVar(&o.cfg.CommentsRepo, "comments-repo", "", "GitHub repository for utterances comments.")
	fs.StringVar(&o.cfg.LogLevel, "log-level", "", "Log level.")
	return fs, o
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	return flagenv.ParseSet(envPrefix, fs)
}

// config loads the config file and applies every flag that differs from its
// default on top of it.
func (o *options) config(fs *flag.FlagSet) (spacetraveling.SiteConfig, error) {
	var cfg spacetraveling.SiteConfig
	if err := spacetraveling.LoadConfigFile(o.configPath, &cfg); err != nil {
		return cfg, err
	}
	fs.VisitAll(func(f *flag.Flag) {
		if f.Value.String() == f.DefValue {
			return
		}
		switch f.Name {
		case "name":
			cfg.Name = o.cfg.Name
		case "url":
			cfg.URL = o.cfg.URL
		case "description":
			cfg.Description = o.cfg.Description
		case "locale":
			cfg.Locale = o.cfg.Locale
		case "addr":
			cfg.Addr = o.cfg.Addr
		case "api-endpoint":
			cfg.APIEndpoint = o.cfg.APIEndpoint
		case "access-token":
			cfg.AccessToken = o.cfg.AccessToken
		case "db":
			cfg.DatabasePath = o.cfg.DatabasePath
		case "revalidate":
			cfg.Revalidate = o.cfg.Revalidate
		case "blocking-fallback":
			cfg.BlockingFallback = o.cfg.BlockingFallback
		case "refresh-after":
			cfg.RefreshAfter = o.cfg.RefreshAfter
		case "session-secret":
			cfg.SessionSecret = o.cfg.SessionSecret
		case "cookie-secure":
			cfg.CookieSecure = o.cfg.CookieSecure
		case "comments-repo":
			cfg.CommentsRepo = o.cfg.CommentsRepo
		case "log-level":
			cfg.LogLevel = o.cfg.LogLevel
		}
	})
	return cfg, nil
}

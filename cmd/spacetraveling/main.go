// Command spacetraveling serves, builds and loads content for the Space
// Traveling blog.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eringen/spacetraveling"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(log, os.Args[2:])
	case "build":
		err = runBuild(log, os.Args[2:])
	case "import":
		err = runImport(log, os.Args[2:])
	case "version":
		fmt.Printf("spacetraveling %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.WithError(err).Fatal("Command failed")
	}
}

func runServe(log *logrus.Logger, args []string) error {
	fs, opts := newFlagSet("serve")
	if err := parse(fs, args); err != nil {
		return err
	}
	cfg, err := opts.config(fs)
	if err != nil {
		return err
	}

	app := spacetraveling.New(cfg, spacetraveling.WithLogger(log), spacetraveling.WithStaticDir(opts.static))
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start(ctx) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

func runBuild(log *logrus.Logger, args []string) error {
	fs, opts := newFlagSet("build")
	out := fs.String("out", "dist", "Output directory.")
	if err := parse(fs, args); err != nil {
		return err
	}
	cfg, err := opts.config(fs)
	if err != nil {
		return err
	}

	app := spacetraveling.New(cfg, spacetraveling.WithLogger(log), spacetraveling.WithStaticDir(opts.static))
	defer app.Close()
	if err := app.Init(); err != nil {
		return err
	}
	res, err := app.Build(context.Background(), *out)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %d posts and %d assets to %s\n", res.Posts, res.Assets, *out)
	return nil
}

func runImport(log *logrus.Logger, args []string) error {
	fs, opts := newFlagSet("import")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: spacetraveling import [flags] <file.json>")
	}
	cfg, err := opts.config(fs)
	if err != nil {
		return err
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	store, err := spacetraveling.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := store.Import(context.Background(), f)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"file":      fs.Arg(0),
		"db":        cfg.DatabasePath,
		"documents": res.Documents,
		"revisions": res.Revisions,
	}).Info("Imported content")
	return nil
}

func printUsage() {
	fmt.Println(`spacetraveling - the Space Traveling blog

Usage:
  spacetraveling <command> [flags] [arguments]

Commands:
  serve               Start the web server
  build [-out dir]    Write every page to a directory
  import <file.json>  Load documents and drafts into the SQLite store
  version             Print the version
  help                Show this help message

Flags can also be set through environment variables prefixed with
SPACETRAVELING_ (SPACETRAVELING_ADDR=:8080, SPACETRAVELING_API_ENDPOINT=...),
or in the TOML file given by -config (default spacetraveling.toml).

Examples:
  spacetraveling serve -session-secret=change-me
  spacetraveling build -api-endpoint=https://spacetraveling.cdn.prismic.io/api/v2 -out dist
  spacetraveling import posts.json`)
}

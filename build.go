package spacetraveling

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/a-h/templ"
	"github.com/sirupsen/logrus"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/views"
)

// BuildResult summarizes a static build.
type BuildResult struct {
	Posts  int
	Assets int
}

// Build writes the site to outDir: one page per post under post/<uid>/,
// the home page, 404 page, sitemap, feed, robots.txt and the assets. Posts
// are fetched one at a time in list order; the first failure aborts the
// build. Init must have been called.
func (a *App) Build(ctx context.Context, outDir string) (BuildResult, error) {
	var res BuildResult
	cfg := a.Config.View()

	uids, err := a.Fetcher.ListIdentifiers(ctx)
	if err != nil {
		return res, err
	}
	docs := make([]content.Document, 0, len(uids))
	for _, uid := range uids {
		doc, err := a.Fetcher.FetchDocument(ctx, uid, "")
		if err != nil {
			return res, err
		}
		docs = append(docs, doc)
		file := filepath.Join(outDir, "post", uid, "index.html")
		if err := writeComponent(ctx, file, views.Post(cfg, views.Ready(doc, false))); err != nil {
			return res, err
		}
		a.Log.WithField("uid", uid).Debug("Wrote post")
		res.Posts++
	}

	if err := writeComponent(ctx, filepath.Join(outDir, "index.html"), views.Home(cfg, docs)); err != nil {
		return res, err
	}
	if err := writeComponent(ctx, filepath.Join(outDir, "404.html"), views.NotFound(cfg)); err != nil {
		return res, err
	}
	if err := writeFile(filepath.Join(outDir, "sitemap.xml"), func(w io.Writer) error {
		return writeSitemap(w, a.Config.URL, docs)
	}); err != nil {
		return res, err
	}
	if err := writeFile(filepath.Join(outDir, "feed.xml"), func(w io.Writer) error {
		return writeRSS(w, a.Config, docs)
	}); err != nil {
		return res, err
	}
	if err := writeFile(filepath.Join(outDir, "robots.txt"), func(w io.Writer) error {
		_, err := io.WriteString(w, robotsTxt(a.Config.URL))
		return err
	}); err != nil {
		return res, err
	}

	n, err := copyAssets(a.assets(), filepath.Join(outDir, "public"))
	if err != nil {
		return res, err
	}
	res.Assets = n
	a.Log.WithFields(logrus.Fields{
		"out":    outDir,
		"posts":  res.Posts,
		"assets": res.Assets,
	}).Info("Build complete")
	return res, nil
}

func writeComponent(ctx context.Context, file string, c templ.Component) error {
	return writeFile(file, func(w io.Writer) error {
		return c.Render(ctx, w)
	})
}

func writeFile(file string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("spacetraveling: write %s: %w", file, err)
	}
	return f.Close()
}

// copyAssets copies every file of the asset layers into dir. Where layers
// overlap the first one wins.
func copyAssets(assets layeredFS, dir string) (int, error) {
	names := map[string]struct{}{}
	for _, fsys := range assets {
		err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if p == "." {
					return fs.SkipDir
				}
				return err
			}
			if !d.IsDir() {
				names[p] = struct{}{}
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	for name := range names {
		src, err := assets.Open(name)
		if err != nil {
			return 0, err
		}
		err = writeFile(filepath.Join(dir, filepath.FromSlash(path.Clean(name))), func(w io.Writer) error {
			_, err := io.Copy(w, src)
			return err
		})
		src.Close()
		if err != nil {
			return 0, err
		}
	}
	return len(names), nil
}

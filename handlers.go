package spacetraveling

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/views"
)

func (a *App) handleHome(c echo.Context) error {
	docs, err := a.Cache.List(c.Request().Context())
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, views.Home(a.Config.View(), docs))
}

func (a *App) handlePost(c echo.Context) error {
	uid := c.Param("slug")
	ctx := c.Request().Context()

	var page views.PostPage
	if ref, ok := PreviewRef(c); ok {
		noStore(c)
		page = a.Cache.Preview(ctx, uid, ref)
	} else {
		page = a.Cache.Get(ctx, uid)
	}

	return a.renderPost(c, page)
}

func (a *App) handleSitemap(c echo.Context) error {
	docs, err := a.Cache.List(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, docs)
}

func (a *App) handleFeed(c echo.Context) error {
	docs, err := a.Cache.List(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, docs)
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, robotsTxt(a.Config.URL))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	noStore(c)
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = render(c, http.StatusNotFound, views.NotFound(a.Config.View()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.WithError(err).WithField("uri", c.Request().RequestURI).Error("Server error")
		_ = render(c, code, views.ServerError(a.Config.View()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

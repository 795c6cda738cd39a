package spacetraveling

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/views"
)

// render writes cmp as an HTML response with the given status. The page is
// rendered into memory first so a template failure still reaches the error
// handler as a 500 instead of a truncated page.
func render(c echo.Context, code int, cmp templ.Component) error {
	var buf bytes.Buffer
	if err := cmp.Render(c.Request().Context(), &buf); err != nil {
		return err
	}
	return c.HTMLBlob(code, buf.Bytes())
}

// renderPost writes a post page in whichever state it is in. Loading pages
// and missing posts are never stored by shared caches; any other error goes
// to the error handler.
func (a *App) renderPost(c echo.Context, page views.PostPage) error {
	switch page.State {
	case views.StateLoading:
		noStore(c)
	case views.StateError:
		if !content.IsNotFound(page.Err) {
			return page.Err
		}
		noStore(c)
		return render(c, http.StatusNotFound, views.Post(a.Config.View(), page))
	}
	return render(c, http.StatusOK, views.Post(a.Config.View(), page))
}

package spacetraveling

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/content/prismic"
)

// handlePreview starts a preview session. The content editor links here with
// the draft ref as token and the post uid as documentId.
func (a *App) handlePreview(c echo.Context) error {
	ip := c.RealIP()
	if !a.limiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many preview attempts. Try again later.")
	}
	ref := c.QueryParam("token")
	uid := c.QueryParam("documentId")
	if ref == "" || uid == "" {
		a.limiter.Record(ip)
		return echo.NewHTTPError(http.StatusBadRequest, "token and documentId are required")
	}

	doc, err := a.Fetcher.FetchDocument(c.Request().Context(), uid, ref)
	if err != nil {
		if invalidPreview(err) {
			a.limiter.Record(ip)
			a.Log.WithFields(logrus.Fields{"uid": uid, "ip": ip}).Warn("Rejected preview token")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid preview token")
		}
		return err
	}
	if err := setPreviewSession(c, ref); err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, doc.Link())
}

func (a *App) handleExitPreview(c echo.Context) error {
	if err := clearPreviewSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, "/")
}

// invalidPreview reports whether err means the ref or uid is unknown rather
// than the content store being unavailable.
func invalidPreview(err error) bool {
	if content.IsNotFound(err) {
		return true
	}
	var se *prismic.StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 400 && se.StatusCode < 500
	}
	return false
}

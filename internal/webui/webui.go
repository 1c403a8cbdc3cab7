// Package webui serves the embedded single-page client.
package webui

import (
	"embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed static/index.html
var content embed.FS

// Index serves GET / — the single-page client. The page talks to the proxy
// exclusively through the /api endpoints.
func Index(c echo.Context) error {
	page, err := content.ReadFile("static/index.html")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/html; charset=utf-8", page)
}

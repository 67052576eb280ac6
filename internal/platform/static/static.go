// Package static serves the bundled single-page frontend next to the API.
package static

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Register mounts dir under /static. When dir holds an index.html it also
// adds a catch-all GET that serves the file at the requested path, or
// index.html when there is none, so client side routes resolve. Nothing is
// registered when dir does not exist. Routes registered on e take
// precedence over the catch-all.
func Register(e *echo.Echo, dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	e.Static("/static", dir)

	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		return true
	}
	spa := echomw.StaticWithConfig(echomw.StaticConfig{
		Root:    dir,
		HTML5:   true,
		Skipper: reserved,
	})
	e.GET("/*", func(c echo.Context) error { return echo.ErrNotFound }, spa)
	return true
}

// reserved keeps unknown API and asset paths from answering with the HTML
// shell.
func reserved(c echo.Context) bool {
	p := c.Param("*")
	return strings.HasPrefix(p, "api/") || strings.HasPrefix(p, "static/")
}

// Package client embeds the static single-page frontend and serves it with
// an index.html fallback for non-asset paths.
package client

import (
	"embed"

	"github.com/bosn/zero-todo/infrastructure/web"
)

//go:embed static
var staticFS embed.FS

// AddRoutes mounts the frontend at the root of the handler. API routes keep
// precedence through their longer patterns.
func AddRoutes(wh *web.WebHandler) error {
	return wh.FileServerSPA(staticFS, "static", "/")
}

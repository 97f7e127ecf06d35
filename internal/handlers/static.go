package handlers

import (
	"io/fs"
	"net/http"
	"strings"
)

// Static serves the bundled frontend. Unknown non-API paths fall back to
// index.html so client-side routes survive a reload.
func Static(assets fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(assets))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" {
			name = "index.html"
		}
		if _, err := fs.Stat(assets, name); err != nil {
			r.URL.Path = "/"
		}
		fileServer.ServeHTTP(w, r)
	})
}

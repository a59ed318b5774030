package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// screens are the client-side routes the app renders. Any other path
// renders the not-found screen.
var screens = map[string]bool{
	"/":              true,
	"/community":     true,
	"/auth":          true,
	"/bookmarks":     true,
	"/wrong-answers": true,
	"/support":       true,
	"/error":         true,
}

// handleSPA serves static files from dir, falling back to index.html
// for any path that doesn't match a real file (SPA client-side routing).
// Unknown screens still get index.html, but with a 404 status.
func handleSPA(dir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		if screens[strings.TrimSuffix(r.URL.Path, "/")] || r.URL.Path == "/" {
			http.ServeFile(w, r, index)
			return
		}

		data, err := os.ReadFile(index)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(data)
	}
}

func handleAPINotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	}
}

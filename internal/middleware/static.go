package middleware

import (
	"net/http"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Static serves files from dir for GET and HEAD requests whose path names an
// existing file, or a directory holding an index.html. Everything else,
// including dot files, goes on to next. An empty dir disables static files.
func Static(dir string) func(next http.Handler) http.Handler {
	if dir == "" {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	fileSystem := http.Dir(dir)
	fileServer := http.FileServer(fileSystem)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			name := path.Clean("/" + r.URL.Path)
			if !staticFileExists(fileSystem, name) {
				next.ServeHTTP(w, r)
				return
			}

			log.Tracef("static file: %s", name)
			fileServer.ServeHTTP(w, r)
		})
	}
}

func staticFileExists(fileSystem http.FileSystem, name string) bool {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}

	f, err := fileSystem.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return false
	}
	if !stat.IsDir() {
		return true
	}

	index, err := fileSystem.Open(path.Join(name, "index.html"))
	if err != nil {
		return false
	}
	_ = index.Close()
	return true
}

package static

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed app.css app.js icons
var files embed.FS

func FileSystem() http.FileSystem {
	return http.FS(files)
}

func FS() fs.FS {
	return files
}

package ui

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html static/css/*
var embeddedFiles embed.FS

// Assets returns the embedded templates and static files
func Assets() fs.FS {
	return embeddedFiles
}

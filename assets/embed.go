// Package assets holds files compiled into the binary: the offline clue
// catalog and the board page.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed catalog.toml web
var FS embed.FS

// Catalog returns the embedded TOML clue catalog.
func Catalog() ([]byte, error) {
	return FS.ReadFile("catalog.toml")
}

// Web returns the board page files rooted at web/.
func Web() (fs.FS, error) {
	return fs.Sub(FS, "web")
}

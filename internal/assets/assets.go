// Package assets embeds the browser dashboard and the local pages the
// catalog points at.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// FS returns the embedded files rooted at the static directory.
func FS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

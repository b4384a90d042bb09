// Package web embeds the demo map page.
package web

import _ "embed"

// IndexHTML is served at the root path.
//
//go:embed index.html
var IndexHTML []byte

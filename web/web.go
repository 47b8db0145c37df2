// Package web carries the dashboard's static pages inside the binary.
package web

import "embed"

//go:embed *.html
var FS embed.FS

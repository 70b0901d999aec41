// Package templates holds the built-in markdown templates.
package templates

import "embed"

//go:embed markdown/*.tmpl
var FS embed.FS

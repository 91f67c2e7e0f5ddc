package web

import "embed"

// StaticFS embeds the dashboard's static assets. The frontend is a
// single page that talks to the JSON API.
//
//go:embed static
var StaticFS embed.FS

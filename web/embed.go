// Package web holds the dashboard page template and its static assets.
package web

import "embed"

// TemplatesFS embeds the page template.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds the chart renderer script and the stylesheet.
//
//go:embed static/*
var StaticFS embed.FS

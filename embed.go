package rango

import "embed"

// EmbeddedAssets contains static assets shipped with the app: rango.css and rango.js.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

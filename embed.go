package spacetraveling

import "embed"

// EmbeddedAssets contains the default site assets: styles.css, logo.svg and
// favicon.svg. Files in the static directory take precedence.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

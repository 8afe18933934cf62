package siteengine

import "embed"

// EmbeddedAssets contains the static files shipped with the binary:
// site.css and admin.js, served under /assets/.
//
//go:embed assets/*
var EmbeddedAssets embed.FS

package theme

import "embed"

// EmbeddedThemes ships the themes selectable by name without a file.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS

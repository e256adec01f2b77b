package kndweb

import "embed"

// EmbeddedAssets holds the browser assets served under /public/:
// carousel.js, admin.js and site.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

func embeddedNames() []string {
	entries, err := EmbeddedAssets.ReadDir("embedded")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

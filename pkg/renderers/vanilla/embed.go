package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	StylesheetName    = "formstate.css"
	RuntimeScriptName = "formstate-blur.js"
)

// TemplatesFS exposes the embedded template bundle.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// AssetsFS exposes the embedded CSS/JS so callers can serve them.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

func readAsset(name string) string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+name)
	if err != nil {
		return ""
	}
	return string(data)
}

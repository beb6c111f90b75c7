package vanilla

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeStylesheetKey is the asset key resolved through the theme AssetURL.
const ThemeStylesheetKey = "stylesheet"

func buildTheme(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{}
	}
	view := themeView{
		Name:    cfg.Theme,
		Variant: cfg.Variant,
		CSSVars: cssVarsStyle(cfg.CSSVars),
	}
	if cfg.AssetURL != nil {
		view.StylesheetURL = cfg.AssetURL(ThemeStylesheetKey)
	}
	return view
}

// cssVarsStyle renders vars as a :root block. Entries that are not custom
// properties, or whose value could close the declaration, are dropped.
func cssVarsStyle(vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for key, value := range vars {
		if !strings.HasPrefix(key, "--") || strings.ContainsAny(key+value, "<>{};") {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {")
	for _, key := range keys {
		b.WriteString(" ")
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString(";")
	}
	b.WriteString(" }")
	return b.String()
}

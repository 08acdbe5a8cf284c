package page

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// stylesheetPartial names the theme partial resolved into a <link> tag.
const stylesheetPartial = "stylesheet"

type pageTheme struct {
	Name         string `json:"name,omitempty"`
	Variant      string `json:"variant,omitempty"`
	Stylesheet   string `json:"stylesheet,omitempty"`
	CSSVarsStyle string `json:"css_vars_style,omitempty"`
}

func buildThemeContext(cfg *theme.RendererConfig) pageTheme {
	if cfg == nil {
		return pageTheme{}
	}
	ctx := pageTheme{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
	}
	if partial := strings.TrimSpace(cfg.Partials[stylesheetPartial]); partial != "" {
		ctx.Stylesheet = partial
		if cfg.AssetURL != nil {
			if resolved := cfg.AssetURL(partial); resolved != "" {
				ctx.Stylesheet = resolved
			}
		}
	}
	return ctx
}

var cssValueReplacer = strings.NewReplacer("<", "", ">", "", "{", "", "}", "", ";", "")

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		if strings.HasPrefix(key, "--") {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(cssValueReplacer.Replace(key))
		b.WriteString(": ")
		b.WriteString(cssValueReplacer.Replace(vars[key]))
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

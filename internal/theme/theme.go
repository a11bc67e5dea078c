// Package theme serves the preview stylesheets. The CSS files live in
// assets/themes and are carried by a packr box; a compiled-in fallback keeps
// the preview styled when an asset file is missing.
package theme

import (
	"strings"

	"github.com/gobuffalo/packr"
	"github.com/sirupsen/logrus"
)

const Default = "dark"

var box = packr.NewBox("../../assets/themes")

// compiled memoizes loaded stylesheets so theme switches never reread the box.
var compiled = map[string]string{}

var names = []string{"dark", "light", "sepia"}

// Available lists the theme names in presentation order.
func Available() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Known reports whether name is a registered theme.
func Known(name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Get returns the stylesheet for name, falling back to the default theme's
// built-in CSS for unknown names.
func Get(name string) string {
	if !Known(name) {
		name = Default
	}

	if css, ok := compiled[name]; ok {
		return css
	}

	css, err := box.FindString(name + ".css")
	if err != nil {
		logrus.Errorf("theme asset %s.css missing, using fallback: %v", name, err)
		css = fallback(name)
	}

	compiled[name] = css
	return css
}

func fallback(name string) string {
	var fg, bg, accent string
	switch name {
	case "light":
		fg, bg, accent = "#1f2328", "#ffffff", "#0969da"
	case "sepia":
		fg, bg, accent = "#433422", "#f4ecd8", "#8b6f47"
	default:
		fg, bg, accent = "#e6edf3", "#0d1117", "#4493f8"
	}

	var b strings.Builder
	b.WriteString("body { font-family: -apple-system, 'Segoe UI', sans-serif; ")
	b.WriteString("line-height: 1.6; padding: 24px; color: ")
	b.WriteString(fg)
	b.WriteString("; background: ")
	b.WriteString(bg)
	b.WriteString("; }\na { color: ")
	b.WriteString(accent)
	b.WriteString("; }\n")
	return b.String()
}

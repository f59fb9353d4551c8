// Package render turns documents, requests and responses into text for the
// terminal UI and the CLI.
package render

import (
	"regexp"
	"strings"

	"github.com/fatih/color"
)

var pathParamRe = regexp.MustCompile(`\{([^}]+)\}`)

// Painter applies terminal colors. A disabled painter returns text as is.
type Painter struct {
	enabled bool
	dark    bool
	accent  color.Attribute
}

// NewPainter returns a painter using themeColor for group headers. dark
// selects the highlighting style for response bodies.
func NewPainter(enabled bool, themeColor string, dark bool) Painter {
	return Painter{enabled: enabled, dark: dark, accent: themeAttr(themeColor)}
}

// Plain is a painter that never colors.
var Plain = Painter{accent: color.FgBlue}

func themeAttr(name string) color.Attribute {
	switch strings.ToLower(name) {
	case "green":
		return color.FgGreen
	case "cyan":
		return color.FgCyan
	case "purple", "magenta":
		return color.FgMagenta
	case "red":
		return color.FgRed
	case "yellow", "orange":
		return color.FgYellow
	default:
		return color.FgBlue
	}
}

func (p Painter) paint(text string, attrs ...color.Attribute) string {
	if !p.enabled || len(attrs) == 0 {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

func methodAttr(method string) []color.Attribute {
	switch strings.ToUpper(method) {
	case "GET":
		return []color.Attribute{color.FgBlue}
	case "POST":
		return []color.Attribute{color.FgGreen}
	case "PUT":
		return []color.Attribute{color.FgYellow}
	case "DELETE":
		return []color.Attribute{color.FgRed}
	case "PATCH":
		return []color.Attribute{color.FgCyan}
	case "HEAD", "OPTIONS":
		return []color.Attribute{color.FgMagenta}
	}
	return nil
}

// Method returns the upper-cased method padded to a fixed width.
func (p Painter) Method(method string) string {
	return p.paint(padRight(strings.ToUpper(method), 6), methodAttr(method)...)
}

// Status colors a status line by class: 2xx green, 4xx yellow, 5xx and
// transport errors red.
func (p Painter) Status(code int, text string) string {
	switch {
	case code == 0:
		return p.paint(text, color.FgRed)
	case code >= 200 && code < 300:
		return p.paint(text, color.FgGreen)
	case code >= 400 && code < 500:
		return p.paint(text, color.FgYellow)
	case code >= 500:
		return p.paint(text, color.FgRed)
	}
	return text
}

// Path highlights {placeholders}.
func (p Painter) Path(path string) string {
	if !p.enabled {
		return path
	}
	return pathParamRe.ReplaceAllStringFunc(path, func(m string) string {
		return p.paint(m, color.FgCyan)
	})
}

func (p Painter) Dim(s string) string    { return p.paint(s, color.FgHiBlack) }
func (p Painter) Accent(s string) string { return p.paint(s, p.accent, color.Bold) }
func (p Painter) Warn(s string) string   { return p.paint(s, color.FgYellow) }
func (p Painter) Error(s string) string  { return p.paint(s, color.FgRed) }

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}

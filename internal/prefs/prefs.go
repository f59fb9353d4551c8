// Package prefs holds durable display preferences and the selected
// environment.
package prefs

import (
	"github.com/rs/zerolog"

	"apidesk/internal/storage"
)

const (
	keyDarkMode   = "apidesk_dark_mode"
	keyThemeColor = "apidesk_theme_color"
	keyUITheme    = "apidesk_ui_theme"
	keyCurrentEnv = "apidesk_current_env"
)

const (
	DefaultThemeColor = "blue"
	DefaultUITheme    = "default"
)

type Prefs struct {
	kv  storage.Store
	log zerolog.Logger
}

// New seeds dark mode from configuration the first time it runs.
func New(kv storage.Store, log zerolog.Logger, darkModeDefault bool) *Prefs {
	p := &Prefs{kv: kv, log: log}
	var dark bool
	if !storage.GetJSON(kv, log, keyDarkMode, &dark) {
		p.SetDarkMode(darkModeDefault)
	}
	return p
}

func (p *Prefs) DarkMode() bool {
	var dark bool
	storage.GetJSON(p.kv, p.log, keyDarkMode, &dark)
	return dark
}

func (p *Prefs) SetDarkMode(on bool) {
	_ = storage.PutJSON(p.kv, p.log, keyDarkMode, on)
}

// ToggleDarkMode flips the flag and returns the new value.
func (p *Prefs) ToggleDarkMode() bool {
	on := !p.DarkMode()
	p.SetDarkMode(on)
	return on
}

func (p *Prefs) ThemeColor() string {
	return p.str(keyThemeColor, DefaultThemeColor)
}

func (p *Prefs) SetThemeColor(c string) {
	_ = storage.PutJSON(p.kv, p.log, keyThemeColor, c)
}

func (p *Prefs) UITheme() string {
	return p.str(keyUITheme, DefaultUITheme)
}

func (p *Prefs) SetUITheme(t string) {
	_ = storage.PutJSON(p.kv, p.log, keyUITheme, t)
}

// CurrentEnv returns the selected environment index, or 0 when the stored
// index does not fit n environments.
func (p *Prefs) CurrentEnv(n int) int {
	var idx int
	if !storage.GetJSON(p.kv, p.log, keyCurrentEnv, &idx) || idx < 0 || idx >= n {
		return 0
	}
	return idx
}

func (p *Prefs) SetCurrentEnv(idx int) {
	_ = storage.PutJSON(p.kv, p.log, keyCurrentEnv, idx)
}

func (p *Prefs) str(key, def string) string {
	var s string
	if !storage.GetJSON(p.kv, p.log, key, &s) || s == "" {
		return def
	}
	return s
}

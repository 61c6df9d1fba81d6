package prefs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/interpretive-systems/codecraft/internal/langs"
	"github.com/interpretive-systems/codecraft/internal/store"
)

// Prefs represents persisted editor preferences. The *Set flags report
// whether a value came from the store rather than the defaults.
type Prefs struct {
	Language     string
	LanguageSet  bool
	Theme        string
	ThemeSet     bool
	FontSize     int
	FontSizeSet  bool
	Autocomplete bool
	AutoSet      bool
	AutoDelay    time.Duration
	DelaySet     bool
}

const (
	keyLanguage     = "editor-language"
	keyTheme        = "editor-theme"
	keyFontSize     = "editor-font-size"
	keyAutocomplete = "ai-autocomplete-enabled"
	keyAutoDelay    = "ai-autocomplete-delay"
)

// Defaults and limits.
const (
	DefaultTheme     = "vs-dark"
	DefaultFontSize  = 16
	MinFontSize      = 12
	MaxFontSize      = 24
	DefaultAutoDelay = 300 * time.Millisecond
)

// Defaults returns the preferences of a fresh install.
func Defaults() Prefs {
	return Prefs{
		Language:     langs.Default,
		Theme:        DefaultTheme,
		FontSize:     DefaultFontSize,
		Autocomplete: true,
		AutoDelay:    DefaultAutoDelay,
	}
}

// Load reads preferences from kv, keeping defaults for missing or
// unparsable values. Storage errors leave the defaults in place.
func Load(ctx context.Context, kv store.KV) Prefs {
	p := Defaults()
	if s, ok := get(ctx, kv, keyLanguage); ok && s != "" {
		p.LanguageSet = true
		p.Language = s
	}
	if s, ok := get(ctx, kv, keyTheme); ok && s != "" {
		p.ThemeSet = true
		p.Theme = s
	}
	if s, ok := get(ctx, kv, keyFontSize); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			p.FontSizeSet = true
			p.FontSize = ClampFontSize(n)
		}
	}
	if s, ok := get(ctx, kv, keyAutocomplete); ok {
		p.AutoSet = true
		p.Autocomplete = parseBool(s)
	}
	if s, ok := get(ctx, kv, keyAutoDelay); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n >= 0 {
			p.DelaySet = true
			p.AutoDelay = time.Duration(n) * time.Millisecond
		}
	}
	return p
}

// ClampFontSize limits n to [MinFontSize, MaxFontSize].
func ClampFontSize(n int) int {
	return max(MinFontSize, min(MaxFontSize, n))
}

// SaveLanguage persists the session language.
func SaveLanguage(ctx context.Context, kv store.KV, lang string) error {
	return set(ctx, kv, keyLanguage, lang)
}

// SaveTheme persists the theme id.
func SaveTheme(ctx context.Context, kv store.KV, theme string) error {
	return set(ctx, kv, keyTheme, theme)
}

// SaveFontSize persists the clamped font size and returns it.
func SaveFontSize(ctx context.Context, kv store.KV, n int) (int, error) {
	n = ClampFontSize(n)
	return n, set(ctx, kv, keyFontSize, strconv.Itoa(n))
}

// SaveAutocompleteEnabled persists the autocomplete toggle.
func SaveAutocompleteEnabled(ctx context.Context, kv store.KV, v bool) error {
	return set(ctx, kv, keyAutocomplete, boolStr(v))
}

// SaveAutocompleteDelay persists the debounce delay in milliseconds.
func SaveAutocompleteDelay(ctx context.Context, kv store.KV, d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid autocomplete delay: %s", d)
	}
	return set(ctx, kv, keyAutoDelay, strconv.FormatInt(d.Milliseconds(), 10))
}

// Keys lists the preference keys, for the CLI.
func Keys() []string {
	return []string{keyLanguage, keyTheme, keyFontSize, keyAutocomplete, keyAutoDelay}
}

// Set validates and persists one preference by key, as typed on the command
// line.
func Set(ctx context.Context, kv store.KV, key, value string) error {
	switch key {
	case keyLanguage:
		if !langs.Known(value) {
			return fmt.Errorf("%w: %q", langs.ErrUnknownLanguage, value)
		}
		return SaveLanguage(ctx, kv, value)
	case keyTheme:
		return SaveTheme(ctx, kv, value)
	case keyFontSize:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid font size %q: %w", value, err)
		}
		_, err = SaveFontSize(ctx, kv, n)
		return err
	case keyAutocomplete:
		return SaveAutocompleteEnabled(ctx, kv, parseBool(value))
	case keyAutoDelay:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid delay %q: %w", value, err)
		}
		return SaveAutocompleteDelay(ctx, kv, time.Duration(n)*time.Millisecond)
	default:
		return fmt.Errorf("unknown preference: %s", key)
	}
}

// Get returns the display value of one preference.
func (p Prefs) Get(key string) (string, bool) {
	switch key {
	case keyLanguage:
		return p.Language, true
	case keyTheme:
		return p.Theme, true
	case keyFontSize:
		return strconv.Itoa(p.FontSize), true
	case keyAutocomplete:
		return boolStr(p.Autocomplete), true
	case keyAutoDelay:
		return strconv.FormatInt(p.AutoDelay.Milliseconds(), 10), true
	}
	return "", false
}

func get(ctx context.Context, kv store.KV, key string) (string, bool) {
	v, ok, err := kv.Get(ctx, key)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(v), ok
}

func set(ctx context.Context, kv store.KV, key, value string) error {
	if err := kv.Set(ctx, key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func boolStr(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

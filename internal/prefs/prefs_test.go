package prefs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/interpretive-systems/codecraft/internal/langs"
	"github.com/interpretive-systems/codecraft/internal/store"
)

func TestLoadDefaults(t *testing.T) {
	p := Load(context.Background(), store.NewMemory())
	if p.Language != "javascript" || p.Theme != "vs-dark" || p.FontSize != 16 {
		t.Fatalf("unexpected defaults %+v", p)
	}
	if !p.Autocomplete || p.AutoDelay != 300*time.Millisecond {
		t.Fatalf("autocomplete defaults %+v", p)
	}
	if p.LanguageSet || p.ThemeSet || p.FontSizeSet || p.AutoSet || p.DelaySet {
		t.Fatalf("set flags should be false: %+v", p)
	}
}

func TestFontSizeClamp(t *testing.T) {
	for in, want := range map[int]int{5: 12, 100: 24, 18: 18, 12: 12, 24: 24} {
		if got := ClampFontSize(in); got != want {
			t.Fatalf("ClampFontSize(%d) = %d, want %d", in, got, want)
		}
	}
	kv := store.NewMemory()
	n, err := SaveFontSize(context.Background(), kv, 100)
	if err != nil || n != 24 {
		t.Fatalf("save: %d %v", n, err)
	}
	if v, _, _ := kv.Get(context.Background(), "editor-font-size"); v != "24" {
		t.Fatalf("stored %q", v)
	}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	SaveLanguage(ctx, kv, "python")
	SaveTheme(ctx, kv, "monokai")
	SaveFontSize(ctx, kv, 18)
	SaveAutocompleteEnabled(ctx, kv, false)
	SaveAutocompleteDelay(ctx, kv, 750*time.Millisecond)

	p := Load(ctx, kv)
	if p.Language != "python" || p.Theme != "monokai" || p.FontSize != 18 {
		t.Fatalf("loaded %+v", p)
	}
	if p.Autocomplete || p.AutoDelay != 750*time.Millisecond || !p.AutoSet || !p.DelaySet {
		t.Fatalf("autocomplete %+v", p)
	}
	if v, _ := p.Get("ai-autocomplete-delay"); v != "750" {
		t.Fatalf("get delay %q", v)
	}
}

func TestLoadIgnoresGarbage(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	kv.Set(ctx, "editor-font-size", "huge")
	kv.Set(ctx, "ai-autocomplete-delay", "-5")
	p := Load(ctx, kv)
	if p.FontSize != 16 || p.FontSizeSet || p.AutoDelay != DefaultAutoDelay {
		t.Fatalf("garbage should keep defaults: %+v", p)
	}
}

func TestSetByKey(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	if err := Set(ctx, kv, "editor-language", "cobol"); !errors.Is(err, langs.ErrUnknownLanguage) {
		t.Fatalf("want unknown language, got %v", err)
	}
	if err := Set(ctx, kv, "editor-font-size", "abc"); err == nil {
		t.Fatalf("expected parse error")
	}
	if err := Set(ctx, kv, "nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	if err := Set(ctx, kv, "ai-autocomplete-enabled", "off"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if p := Load(ctx, kv); p.Autocomplete {
		t.Fatalf("autocomplete should be off")
	}
	if len(Keys()) != 5 {
		t.Fatalf("keys %v", Keys())
	}
}

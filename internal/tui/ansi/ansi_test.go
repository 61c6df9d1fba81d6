package ansi

import (
	"strings"
	"testing"
)

func TestPad(t *testing.T) {
	if got := Pad("abc", 5); got != "abc  " {
		t.Fatalf("Pad = %q", got)
	}
	if got := Strip(Pad("\x1b[31mabcdef\x1b[0m", 4)); Width(got) != 4 || !strings.HasSuffix(got, "…") {
		t.Fatalf("Pad truncate = %q", got)
	}
}

func TestSlice(t *testing.T) {
	if got := Slice("0123456789", 3, 4); got != "3456" {
		t.Fatalf("Slice = %q", got)
	}
	if got := Clip("héllo", 2); got != "hé" {
		t.Fatalf("Clip = %q", got)
	}
}

func TestWrap(t *testing.T) {
	lines := Wrap("the quick brown fox\nxxxxxxxxxxxx", 10)
	want := []string{"the quick", "brown fox", "xxxxxxxxxx", "xx"}
	if len(lines) != len(want) {
		t.Fatalf("Wrap = %q", lines)
	}
	for i := range want {
		if strings.TrimRight(lines[i], " ") != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "codecraft.log")
	if err := Init(Config{Level: "debug", Format: "json", OutputPath: path}); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { globalLogger = nil })

	Info("snapshot saved", zap.Int("nodes", 3))
	Debug("debug line")
	SetLevel("warn")
	Info("suppressed")
	_ = Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, "snapshot saved") || !strings.Contains(out, `"nodes":3`) {
		t.Fatalf("missing entry: %s", out)
	}
	if !strings.Contains(out, "debug line") {
		t.Fatalf("debug level not honored: %s", out)
	}
	if strings.Contains(out, "suppressed") {
		t.Fatalf("SetLevel not applied: %s", out)
	}
}

func TestLBeforeInitIsSilent(t *testing.T) {
	globalLogger = nil
	L().Error("nothing should be written")
	if L() == nil || S() == nil {
		t.Fatalf("logger must never be nil")
	}
}

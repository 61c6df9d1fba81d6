package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/interpretive-systems/codecraft/internal/ai"
	"github.com/interpretive-systems/codecraft/internal/langs"
)

func setupEnv(t *testing.T, pistonURL string) string {
	t.Helper()
	for _, k := range []string{
		"LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR", "S3_ENDPOINT", "AI_PROVIDER",
		"OLLAMA_ENDPOINT", "AI_MODEL", "DATABASE_URL", "CODECRAFT_TOKEN", "JWT_SECRET",
		"CODECRAFT_DATA_DIR",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("CODECRAFT_STORE", "file")
	if pistonURL == "" {
		pistonURL = "http://127.0.0.1:1/api/v2/execute"
	}
	t.Setenv("PISTON_URL", pistonURL)
	return t.TempDir()
}

func execute(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustExecute(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := execute(t, dataDir, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestFilesCommands(t *testing.T) {
	dir := setupEnv(t, "")

	out := mustExecute(t, dir, "files", "ls")
	if !strings.Contains(out, "* main.js") {
		t.Fatalf("fresh tree should hold the active starter file:\n%s", out)
	}

	mustExecute(t, dir, "files", "mkdir", "src")
	mustExecute(t, dir, "files", "new", "src/util.py")

	out = mustExecute(t, dir, "files", "cat", "src/util.py")
	if out != langs.DefaultCode("python") {
		t.Fatalf("cat = %q", out)
	}

	out = mustExecute(t, dir, "files", "ls")
	if !strings.Contains(out, "src/") || !strings.Contains(out, "*   util.py") {
		t.Fatalf("ls after new:\n%s", out)
	}

	mustExecute(t, dir, "files", "mv", "src/util.py", "/")
	if _, err := execute(t, dir, "files", "cat", "util.py"); err != nil {
		t.Fatalf("moved file not found: %v", err)
	}

	out = mustExecute(t, dir, "files", "rm", "src")
	if !strings.Contains(out, "deleted 1 item(s)") {
		t.Fatalf("rm = %q", out)
	}
	if _, err := execute(t, dir, "files", "cat", "src"); err == nil {
		t.Fatalf("deleted folder still resolves")
	}
}

func TestFilesNewRejectsMissingFolder(t *testing.T) {
	dir := setupEnv(t, "")
	if _, err := execute(t, dir, "files", "new", "nope/a.go"); err == nil {
		t.Fatalf("expected an error for a missing parent folder")
	}
}

func TestPrefsCommands(t *testing.T) {
	dir := setupEnv(t, "")

	mustExecute(t, dir, "prefs", "set", "editor-font-size", "20")
	if out := mustExecute(t, dir, "prefs", "get", "editor-font-size"); out != "20\n" {
		t.Fatalf("get = %q", out)
	}
	out := mustExecute(t, dir, "prefs", "get")
	if !strings.Contains(out, "editor-language=javascript") || !strings.Contains(out, "editor-font-size=20") {
		t.Fatalf("get all:\n%s", out)
	}
	if _, err := execute(t, dir, "prefs", "set", "editor-language", "cobol"); err == nil {
		t.Fatalf("unknown language accepted")
	}
	if _, err := execute(t, dir, "prefs", "get", "nope"); err == nil {
		t.Fatalf("unknown key accepted")
	}
}

func TestRunCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"language":"javascript","version":"18.15.0","run":{"code":0,"stdout":"hi\n","stderr":"","output":"hi\n"}}`))
	}))
	defer srv.Close()
	dir := setupEnv(t, srv.URL)

	out := mustExecute(t, dir, "run", "main.js")
	if out != "hi\n" {
		t.Fatalf("run output = %q", out)
	}
}

func TestRunCommandFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"run":{"code":1,"stdout":"","stderr":"boom","output":"boom"}}`))
	}))
	defer srv.Close()
	dir := setupEnv(t, srv.URL)

	out, err := execute(t, dir, "run")
	if !errors.Is(err, errRunFailed) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "boom") {
		t.Fatalf("error text not printed: %q", out)
	}
}

func TestRunUnknownFile(t *testing.T) {
	dir := setupEnv(t, "")
	if _, err := execute(t, dir, "run", "missing.js"); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestPrintStream(t *testing.T) {
	ch := make(chan ai.Update, 4)
	for _, c := range []string{"Hel", "Hello", "Hello!"} {
		ch <- ai.Update{Message: ai.Message{Content: c}}
	}
	ch <- ai.Update{Message: ai.Message{Content: "Hello!"}, Done: true}
	close(ch)

	var buf bytes.Buffer
	if err := printStream(&buf, ch); err != nil {
		t.Fatalf("printStream: %v", err)
	}
	if buf.String() != "Hello!\n" {
		t.Fatalf("printed %q", buf.String())
	}
}

func TestPrintStreamError(t *testing.T) {
	ch := make(chan ai.Update, 1)
	ch <- ai.Update{Done: true, Err: errors.New("connection refused")}
	close(ch)
	if err := printStream(&bytes.Buffer{}, ch); err == nil || !strings.Contains(err.Error(), ai.FailureNotice) {
		t.Fatalf("err = %v", err)
	}
}

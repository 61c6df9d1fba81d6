package execution

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func pistonServer(t *testing.T, status int, reply string, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Language == "" || req.Version == "" || len(req.Files) != 1 {
			t.Errorf("unexpected request %+v", req)
		}
		w.WriteHeader(status)
		w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, reply string) Result {
	t.Helper()
	srv := pistonServer(t, http.StatusOK, reply, nil)
	res, err := NewRunner(NewClient(srv.URL)).Run(context.Background(), "javascript", "console.log('hi')")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func TestRunSuccessTrimsOutput(t *testing.T) {
	res := run(t, `{"run":{"code":0,"output":"hello\n","stdout":"hello\n","stderr":""}}`)
	if res.Failed() || res.Output != "hello" {
		t.Fatalf("got %+v", res)
	}
	if res.Code != "console.log('hi')" {
		t.Fatalf("code not recorded: %q", res.Code)
	}
}

func TestRunCompileFailure(t *testing.T) {
	res := run(t, `{"compile":{"code":1,"stderr":"syntax error","output":"syntax error"},"run":{"code":0,"output":""}}`)
	if res.ErrorText() != "syntax error" || res.Output != "" {
		t.Fatalf("got %+v", res)
	}
}

func TestRunCompileFailureFallsBackToOutput(t *testing.T) {
	res := run(t, `{"compile":{"code":2,"stderr":"","output":"ld failed"}}`)
	if res.ErrorText() != "ld failed" {
		t.Fatalf("got %+v", res)
	}
}

func TestRunRuntimeFailure(t *testing.T) {
	res := run(t, `{"run":{"code":1,"stderr":"","output":"Traceback"}}`)
	if res.ErrorText() != "Traceback" {
		t.Fatalf("got %+v", res)
	}
}

func TestServiceMessageWinsOnBadStatus(t *testing.T) {
	srv := pistonServer(t, http.StatusBadRequest, `{"message":"runtime is unknown"}`, nil)
	res, err := NewRunner(NewClient(srv.URL)).Run(context.Background(), "python", "print(1)")
	if err != nil || res.ErrorText() != "runtime is unknown" {
		t.Fatalf("got %+v %v", res, err)
	}
}

func TestEmptyCodeSkipsNetwork(t *testing.T) {
	var hits int32
	srv := pistonServer(t, http.StatusOK, `{}`, &hits)
	r := NewRunner(NewClient(srv.URL))
	res, err := r.Run(context.Background(), "javascript", "")
	if !errors.Is(err, ErrEmptyCode) || res.ErrorText() != "Please enter some code" {
		t.Fatalf("got %+v %v", res, err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("request issued for empty code")
	}
	if r.Running() {
		t.Fatalf("runner left running")
	}
}

func TestTransportErrorIsGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()
	r := NewRunner(NewClient(srv.URL, WithTimeout(time.Second)))
	res, err := r.Run(context.Background(), "javascript", "1")
	if err != nil || res.ErrorText() != "Error running code" {
		t.Fatalf("got %+v %v", res, err)
	}
	if r.Status() != Failed {
		t.Fatalf("status %s", r.Status())
	}
}

func TestUnknownLanguageIsGeneric(t *testing.T) {
	var hits int32
	srv := pistonServer(t, http.StatusOK, `{}`, &hits)
	res, _ := NewRunner(NewClient(srv.URL)).Run(context.Background(), "cobol", "DISPLAY 'HI'")
	if res.ErrorText() != MsgGeneric || atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("got %+v hits=%d", res, hits)
	}
}

type blockingExec struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingExec) Execute(ctx context.Context, req Request) (*Response, error) {
	close(b.started)
	<-b.release
	return &Response{Run: &StageResult{Output: "done"}}, nil
}

func TestRunIsNoOpWhileRunning(t *testing.T) {
	ex := &blockingExec{started: make(chan struct{}), release: make(chan struct{})}
	r := NewRunner(ex)
	done := make(chan Result)
	go func() {
		res, _ := r.Run(context.Background(), "go", "package main")
		done <- res
	}()
	<-ex.started
	if _, err := r.Run(context.Background(), "go", "package main"); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("want ErrAlreadyRunning, got %v", err)
	}
	close(ex.release)
	if res := <-done; res.Output != "done" {
		t.Fatalf("got %+v", res)
	}
	if r.Status() != Succeeded {
		t.Fatalf("status %s", r.Status())
	}
}

type panicExec struct{}

func (panicExec) Execute(context.Context, Request) (*Response, error) { panic("boom") }

func TestPanicStillLeavesRunning(t *testing.T) {
	r := NewRunner(panicExec{})
	res, _ := r.Run(context.Background(), "go", "x")
	if res.ErrorText() != MsgGeneric || r.Running() {
		t.Fatalf("got %+v running=%v", res, r.Running())
	}
}

func TestClassifyServiceErrors(t *testing.T) {
	tests := []struct {
		name  string
		resp  *Response
		stage Stage
		msg   string
	}{
		{"compile exit", &Response{Compile: &StageResult{Code: 1, Stderr: "bad"}}, StageCompile, "bad"},
		{"run killed", &Response{Run: &StageResult{Code: NoExitCode, Signal: "SIGKILL", Output: "partial"}}, StageRun, "partial"},
		{"run killed silently", &Response{Run: &StageResult{Code: NoExitCode, Signal: "SIGKILL"}}, StageRun, "Process terminated by SIGKILL"},
		{"compile signal with zero code", &Response{Compile: &StageResult{Signal: "SIGTERM"}, Run: &StageResult{}}, StageCompile, "Process terminated by SIGTERM"},
	}
	for _, tt := range tests {
		res, err := Classify("x", tt.resp)
		var se *ServiceError
		if !errors.As(err, &se) || se.Stage != tt.stage || !errors.Is(err, ErrService) {
			t.Fatalf("%s: got %v", tt.name, err)
		}
		if res.ErrorText() != tt.msg {
			t.Fatalf("%s: error text %q, want %q", tt.name, res.ErrorText(), tt.msg)
		}
	}
	if _, err := Classify("x", &Response{}); err == nil {
		t.Fatalf("missing run section should fail")
	}
}

func TestRunKilledWithoutExitCode(t *testing.T) {
	res := run(t, `{"run":{"code":null,"signal":"SIGKILL","stdout":"partial","stderr":"","output":"partial"}}`)
	if !res.Failed() || res.ErrorText() != "partial" {
		t.Fatalf("killed run reported as %+v", res)
	}
	res = run(t, `{"run":{"signal":"SIGKILL","output":""}}`)
	if !res.Failed() {
		t.Fatalf("missing exit code reported as success: %+v", res)
	}
}

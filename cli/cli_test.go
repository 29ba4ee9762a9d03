package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	contractx "github.com/tanpawarit/symphony/agent/contract"
)

// executeCommand runs the root command with args and returns captured stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// isolateEnv points every external dependency at test values. Commands read
// configuration from the process environment, so these tests do not run in
// parallel.
func isolateEnv(t *testing.T, exaURL string) {
	t.Helper()

	t.Setenv("EXA_API_KEY", "test-key")
	t.Setenv("EXA_BASE_URL", exaURL)
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENROUTER_MODEL", "")
	t.Setenv("ARCHIVE_BACKEND", "none")
	t.Setenv("QSTASH_TOKEN", "")
	t.Setenv("SYMPHONY_NARRATE", "false")
}

func newExaServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"results":[{"title":"Solar","url":"https://example.com/solar","text":"solar energy adoption grows","score":0.5}]}`)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()
	if root.Use != "symphony" {
		t.Fatalf("Use = %q", root.Use)
	}

	got := map[string]bool{}
	for _, cmd := range root.Commands() {
		got[cmd.Name()] = true
	}
	for _, want := range []string{"serve", "perform", "seek", "seekers"} {
		if !got[want] {
			t.Fatalf("missing subcommand %q", want)
		}
	}
}

func TestSeekersCommand(t *testing.T) {
	out, err := executeCommand(t, "seekers")
	if err != nil {
		t.Fatalf("seekers error = %v", err)
	}
	for _, name := range []string{"truth", "scholar", "commerce", "source", "rival", "network", "lore"} {
		if !strings.Contains(out, name) {
			t.Fatalf("output missing %q:\n%s", name, out)
		}
	}
}

func TestPerformCommand(t *testing.T) {
	server, calls := newExaServer(t)
	isolateEnv(t, server.URL)

	out, err := executeCommand(t, "perform", "--seekers", "truth,lore", "--sequential", "solar", "energy")
	if err != nil {
		t.Fatalf("perform error = %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 exa calls, got %d", calls.Load())
	}

	var symphony contractx.Symphony
	if err := json.Unmarshal([]byte(out), &symphony); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if symphony.Query != "solar energy" {
		t.Fatalf("Query = %q", symphony.Query)
	}
	if len(symphony.Findings) != 2 || symphony.Findings[0].Source != "truth" || symphony.Findings[1].Source != "lore" {
		t.Fatalf("unexpected findings: %+v", symphony.Findings)
	}
	if len(symphony.Resonances) != 1 {
		t.Fatalf("expected identical findings to resonate, got %d", len(symphony.Resonances))
	}
	if symphony.ID == "" {
		t.Fatal("symphony id is empty")
	}
}

func TestSeekCommand(t *testing.T) {
	server, _ := newExaServer(t)
	isolateEnv(t, server.URL)

	out, err := executeCommand(t, "seek", "scholar", "solar")
	if err != nil {
		t.Fatalf("seek error = %v", err)
	}
	var findings []contractx.Finding
	if err := json.Unmarshal([]byte(out), &findings); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(findings) != 1 || findings[0].Source != "scholar" {
		t.Fatalf("unexpected findings: %+v", findings)
	}

	_, err = executeCommand(t, "seek", "oracle", "solar")
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("seek unknown error = %v, want ErrValidation", err)
	}
}

func TestCatalogFollowsSymphonySwitch(t *testing.T) {
	server, _ := newExaServer(t)
	isolateEnv(t, server.URL)

	cases := []struct {
		enable string
		want   int
	}{
		{enable: "true", want: 8 + 1 + 7 + 2},
		{enable: "false", want: 8},
	}
	for _, tc := range cases {
		t.Setenv("SYMPHONY_ENABLE_SYMPHONY", tc.enable)

		a, err := buildApp(context.Background(), appOptions{})
		if err != nil {
			t.Fatalf("buildApp() error = %v", err)
		}
		tools := a.catalog().Tools()
		if len(tools) != tc.want {
			t.Fatalf("SYMPHONY_ENABLE_SYMPHONY=%s: got %d tools, want %d", tc.enable, len(tools), tc.want)
		}
		if err := a.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}
}

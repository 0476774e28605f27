package ptyhost

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func TestColorToX11_ANSIColor(t *testing.T) {
	got := colorToX11(termenv.ANSIColor(0))
	if got != "rgb:0000/0000/0000" {
		t.Fatalf("colorToX11(ANSIColor(0)) = %q, want %q", got, "rgb:0000/0000/0000")
	}
}

func TestColorToX11_Nil(t *testing.T) {
	if got := colorToX11(nil); got != "" {
		t.Fatalf("colorToX11(nil) = %q, want empty", got)
	}
}

func TestMergeEnvOverridesExistingKey(t *testing.T) {
	base := []string{"TERM=dumb", "HOME=/home/x"}
	out := mergeEnv(base, map[string]string{"TERM": "xterm-256color"})

	var sawTerm, sawHome bool
	for _, kv := range out {
		if kv == "TERM=xterm-256color" {
			sawTerm = true
		}
		if kv == "HOME=/home/x" {
			sawHome = true
		}
		if strings.HasPrefix(kv, "TERM=dumb") {
			t.Fatalf("stale TERM value survived merge: %v", out)
		}
	}
	if !sawTerm || !sawHome {
		t.Fatalf("expected merged env to contain overridden TERM and preserved HOME, got %v", out)
	}
}

func TestForcedEnvPassesThroughTermProgram(t *testing.T) {
	os.Setenv("TERM_PROGRAM", "iTerm.app")
	defer os.Unsetenv("TERM_PROGRAM")

	env := ForcedEnv()
	if env["TERM_PROGRAM"] != "iTerm.app" {
		t.Fatalf("expected TERM_PROGRAM passed through, got %v", env)
	}
	if env["TERM"] != "xterm-256color" || env["COLORTERM"] != "truecolor" || env["FORCE_COLOR"] != "1" {
		t.Fatalf("expected forced color env, got %v", env)
	}
}

func TestEnableLogFileLocksAndWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.log")

	h := &Host{}
	if err := h.EnableLogFile(path); err != nil {
		t.Fatalf("EnableLogFile: %v", err)
	}
	h.teeLog([]byte("hello\n"))
	h.CloseLogFile()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if string(data) != "hello\n" {
		t.Fatalf("unexpected log contents: %q", data)
	}
}

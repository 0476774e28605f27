package identity

import "testing"

func TestNewLauncherIDHasExpectedPrefix(t *testing.T) {
	id := NewLauncherID()
	if len(id) < len("launcher-") || id[:len("launcher-")] != "launcher-" {
		t.Fatalf("unexpected launcher id shape: %q", id)
	}
}

func TestNewSessionIDIsUnique(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	if a == b {
		t.Fatalf("expected distinct session ids, got %q twice", a)
	}
}

func TestResolveProjectPrefersFlag(t *testing.T) {
	p := ResolveProject("my-flag-project", nil, "/home/user/some-dir")
	if p == nil || *p != "my-flag-project" {
		t.Fatalf("expected flag value, got %v", p)
	}
}

func TestResolveProjectFallsBackToToolArgs(t *testing.T) {
	p := ResolveProject("", []string{"--project", "tool-arg-project"}, "/home/user/some-dir")
	if p == nil || *p != "tool-arg-project" {
		t.Fatalf("expected tool-arg value, got %v", p)
	}
}

func TestResolveProjectFallsBackToCwdBasename(t *testing.T) {
	p := ResolveProject("", nil, "/home/user/my-project")
	if p == nil || *p != "my-project" {
		t.Fatalf("expected cwd basename, got %v", p)
	}
}

func TestWorkingDirTrimsNulTerminator(t *testing.T) {
	dir, err := WorkingDir()
	if err != nil {
		t.Fatalf("WorkingDir: %v", err)
	}
	if len(dir) > 0 && dir[len(dir)-1] == 0 {
		t.Fatalf("expected trimmed dir, got %q", dir)
	}
}

package ptyhost

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// TerminalGuard switches the launcher's controlling terminal to raw
// mode for the lifetime of a session and restores it on Release, no
// matter which exit path got there. Release is idempotent.
type TerminalGuard struct {
	fd      int
	state   *term.State
	enabled bool
}

// NewTerminalGuard puts stdin into raw mode if it is a TTY; on
// non-TTY stdin it is a no-op whose Release also does nothing, per
// spec §4.3.
func NewTerminalGuard() (*TerminalGuard, error) {
	fd := int(os.Stdin.Fd())
	if !isatty.IsTerminal(uintptr(fd)) {
		return &TerminalGuard{fd: fd}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &TerminalGuard{fd: fd, state: state, enabled: true}, nil
}

// Release restores the original terminal state. Safe to call more than
// once and safe to call from a deferred panic-recovery path.
func (g *TerminalGuard) Release() {
	if g == nil || !g.enabled || g.state == nil {
		return
	}
	term.Restore(g.fd, g.state)
	g.state = nil
}

// Size returns the controlling terminal's current size, falling back
// to 80x24 when it cannot be determined (not a TTY, or the ioctl
// fails), per spec §4.3.
func Size() (rows, cols int) {
	fd := int(os.Stdin.Fd())
	if !isatty.IsTerminal(uintptr(fd)) {
		return 24, 80
	}
	c, r, err := term.GetSize(fd)
	if err != nil {
		return 24, 80
	}
	return r, c
}

// WatchResize invokes onResize(rows, cols) every time SIGWINCH fires,
// until stop is closed. Runs on the caller's goroutine; callers spawn
// it with `go`.
func WatchResize(stop <-chan struct{}, onResize func(rows, cols int)) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	defer signal.Stop(sigCh)
	for {
		select {
		case <-stop:
			return
		case <-sigCh:
			rows, cols := Size()
			onResize(rows, cols)
		}
	}
}

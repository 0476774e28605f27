// Package ptyhost spawns a child process attached to a pseudo-terminal
// and tees its I/O, mirroring the teacher's virtualterminal VT but
// generalized from an interactive overlay to a transparent pass-through
// launcher with no local rendering of its own.
package ptyhost

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/creack/pty"
	"github.com/gofrs/flock"
)

// Host owns the PTY master and child process for one session.
type Host struct {
	Ptm *os.File
	Cmd *exec.Cmd

	mu      sync.Mutex
	oscFg   string
	oscBg   string
	logFile *os.File
	logLock *flock.Flock
}

// Spawn starts command in a PTY sized rows×cols with env overrides
// merged over the launcher's own environment.
func Spawn(command string, args []string, dir string, rows, cols int, envOverrides map[string]string) (*Host, error) {
	cmd := exec.Command(command, args...)
	cmd.Dir = dir
	cmd.Env = mergeEnv(os.Environ(), envOverrides)

	ptm, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}
	return &Host{Ptm: ptm, Cmd: cmd}, nil
}

// ForcedEnv builds the environment overrides required by spec §4.3:
// force color support, pass through TERM_PROGRAM if the launcher's own
// environment sets it.
func ForcedEnv() map[string]string {
	env := map[string]string{
		"TERM":       "xterm-256color",
		"COLORTERM":  "truecolor",
		"FORCE_COLOR": "1",
	}
	if tp := os.Getenv("TERM_PROGRAM"); tp != "" {
		env["TERM_PROGRAM"] = tp
	}
	return env
}

func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key := kv
		if idx := strings.IndexByte(kv, '='); idx >= 0 {
			key = kv[:idx]
		}
		if _, skip := overrides[key]; !skip {
			out = append(out, kv)
		}
	}
	for k, v := range overrides {
		out = append(out, k+"="+v)
	}
	return out
}

// SetOSCColors seeds the foreground/background colors Host echoes back
// in response to the child's OSC 10/11 queries.
func (h *Host) SetOSCColors(fg, bg string) {
	h.mu.Lock()
	h.oscFg, h.oscBg = fg, bg
	h.mu.Unlock()
}

// RespondOSCColors inspects a chunk of child output for OSC 10/11 color
// queries and writes the cached answer straight back to the PTY.
func (h *Host) RespondOSCColors(data []byte) {
	h.mu.Lock()
	fg, bg := h.oscFg, h.oscBg
	h.mu.Unlock()
	if fg == "" {
		fg = "rgb:ffff/ffff/ffff"
	}
	if bg == "" {
		bg = "rgb:0000/0000/0000"
	}
	if bytes.Contains(data, []byte("\x1b]10;?")) {
		fmt.Fprintf(h.Ptm, "\x1b]10;%s\x1b\\", fg)
	}
	if bytes.Contains(data, []byte("\x1b]11;?")) {
		fmt.Fprintf(h.Ptm, "\x1b]11;%s\x1b\\", bg)
	}
}

// EnableLogFile opens path for append and flock-guards it so concurrent
// launcher instances never interleave writes into a shared log target.
func (h *Host) EnableLogFile(path string) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock log file: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		lock.Unlock()
		return fmt.Errorf("open log file: %w", err)
	}
	h.mu.Lock()
	h.logFile = f
	h.logLock = lock
	h.mu.Unlock()
	return nil
}

// CloseLogFile releases the log file and its flock, if one was opened.
func (h *Host) CloseLogFile() {
	h.mu.Lock()
	f, lock := h.logFile, h.logLock
	h.logFile, h.logLock = nil, nil
	h.mu.Unlock()
	if f != nil {
		f.Close()
	}
	if lock != nil {
		lock.Unlock()
	}
}

func (h *Host) teeLog(p []byte) {
	h.mu.Lock()
	f := h.logFile
	h.mu.Unlock()
	if f != nil {
		f.Write(p)
	}
}

// PumpOutput copies PTY output to stdout, the state detector, and the
// optional log file, using an 8 KiB buffer per spec §4.3. It returns
// when the PTY read side reaches EOF or errors.
func (h *Host) PumpOutput(stdout io.Writer, detect func([]byte)) error {
	buf := make([]byte, 8*1024)
	for {
		n, err := h.Ptm.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			h.RespondOSCColors(chunk)
			stdout.Write(chunk)
			detect(chunk)
			h.teeLog(chunk)
		}
		if err != nil {
			return err
		}
	}
}

// PumpInput copies stdin to the PTY using a 1 KiB buffer per spec §4.3.
// It returns when stdin reaches EOF or the PTY write fails (child gone).
func (h *Host) PumpInput(stdin io.Reader) error {
	buf := make([]byte, 1024)
	for {
		n, err := stdin.Read(buf)
		if n > 0 {
			if _, werr := h.Ptm.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
	}
}

// Resize propagates a new size to the PTY master.
func (h *Host) Resize(rows, cols int) error {
	return pty.Setsize(h.Ptm, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Wait blocks until the child exits, meant to run on its own goroutine
// so cooperative I/O pumps are never blocked on the reap (spec §4.3,
// "dedicated blocking task").
func (h *Host) Wait() error {
	return h.Cmd.Wait()
}

// Close releases the PTY master.
func (h *Host) Close() error {
	return h.Ptm.Close()
}

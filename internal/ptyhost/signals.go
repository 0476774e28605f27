package ptyhost

import (
	"os"
	"os/signal"
	"syscall"
)

// IgnoreSIGINT makes the launcher immune to SIGINT so that a Ctrl-C
// keystroke (delivered to the whole foreground process group, launcher
// included) only affects the child — per spec §4.3, SIGINT is not
// intercepted at the launcher, it passes through. Returns a restore
// func the caller runs at teardown.
func IgnoreSIGINT() (restore func()) {
	signal.Ignore(syscall.SIGINT)
	return func() { signal.Reset(syscall.SIGINT) }
}

// NotifySIGTERM returns a channel that fires once when the launcher
// receives SIGTERM, for a graceful-shutdown-then-exit(143) path.
func NotifySIGTERM() (ch <-chan os.Signal, stop func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM)
	return c, func() { signal.Stop(c) }
}

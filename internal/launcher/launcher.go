// Package launcher wires the screen emulator, state detector, PTY
// host, and transport client into the run loop described in spec
// §4.5/§5: an orchestrator that owns every component's lifecycle from
// spawn to child exit, and that never lets a missing or unhealthy
// monitor affect the user-visible session.
package launcher

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kizaaku/climonitor-launcher/internal/detect"
	"github.com/kizaaku/climonitor-launcher/internal/identity"
	"github.com/kizaaku/climonitor-launcher/internal/ptyhost"
	"github.com/kizaaku/climonitor-launcher/internal/transport"
)

// Options configures one launcher run.
type Options struct {
	Command    string
	Args       []string
	WorkingDir string
	ProjectTag string

	Tool detect.Detector
	CLI  transport.CliToolType

	Sender transport.MessageSender // nil when no monitor is configured

	Stdout io.Writer
	Stdin  io.Reader

	LogFile string
}

// Launcher owns one session end to end.
type Launcher struct {
	opts Options

	host       *ptyhost.Host
	launcherID string
	sessionID  string

	mu           sync.Mutex // guards detector access from the sampler
	notifiedState detect.SessionState
	lastContext   string
}

// New constructs a Launcher. It does not spawn the child yet.
func New(opts Options) *Launcher {
	return &Launcher{
		opts:          opts,
		launcherID:    identity.NewLauncherID(),
		sessionID:     identity.NewSessionID(),
		notifiedState: detect.Connected,
	}
}

// Run executes the full lifecycle (steps 1-6 of spec §4.5) and
// returns the exit code to use for os.Exit.
func (l *Launcher) Run() int {
	rows, cols := ptyhost.Size()

	host, err := ptyhost.Spawn(l.opts.Command, l.opts.Args, l.opts.WorkingDir, rows, cols, ptyhost.ForcedEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "climonitor-launcher: %v\n", err)
		return 1
	}
	l.host = host
	host.SetOSCColors(ptyhost.DetectOSCColors())
	if l.opts.LogFile != "" {
		if err := host.EnableLogFile(l.opts.LogFile); err != nil {
			fmt.Fprintf(os.Stderr, "climonitor-launcher: %v\n", err)
		}
	}

	guard, err := ptyhost.NewTerminalGuard()
	if err != nil {
		fmt.Fprintf(os.Stderr, "climonitor-launcher: %v\n", err)
	}
	restoreSIGINT := ptyhost.IgnoreSIGINT()
	sigterm, stopSigterm := ptyhost.NotifySIGTERM()

	l.announceConnect(time.Now().UTC())

	done := make(chan struct{})
	var once sync.Once
	abort := func() { once.Do(func() { close(done) }) }

	var exitErr error
	childDone := make(chan struct{})
	go func() {
		exitErr = host.Wait()
		close(childDone)
		abort()
	}()

	go func() {
		err := host.PumpOutput(l.opts.Stdout, func(chunk []byte) {
			l.mu.Lock()
			l.opts.Tool.Process(chunk)
			l.mu.Unlock()
		})
		_ = err
		abort()
	}()

	go func() {
		_ = host.PumpInput(l.opts.Stdin)
		abort()
	}()

	resizeStop := make(chan struct{})
	go ptyhost.WatchResize(resizeStop, func(rows, cols int) {
		host.Resize(rows, cols)
		l.mu.Lock()
		l.opts.Tool.Resize(rows, cols)
		l.mu.Unlock()
	})

	var terminated atomic.Bool
	sampler := time.NewTicker(1 * time.Second)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-sigterm:
				terminated.Store(true)
				abort()
				return
			case <-sampler.C:
				l.sample()
			}
		}
	}()

	<-done
	sampler.Stop()
	close(resizeStop)
	stopSigterm()

	time.Sleep(100 * time.Millisecond) // drain window, spec §4.5 step 6

	if l.opts.Sender != nil {
		l.opts.Sender.SendDisconnect(l.launcherID, time.Now().UTC())
		l.opts.Sender.Close()
	}

	host.CloseLogFile()
	host.Close()
	guard.Release()
	restoreSIGINT()

	select {
	case <-childDone:
	default:
	}

	if terminated.Load() {
		return 143 // 128 + SIGTERM
	}
	if exitErr != nil {
		return exitCodeFrom(exitErr)
	}
	return 0
}

// announceConnect is spec §4.5 step 4: send Connect, then an
// unconditional initial StateUpdate(Idle) that the Connected→Idle
// suppression in sample() must never swallow — otherwise a session
// that starts and stays idle reports no state at all.
func (l *Launcher) announceConnect(now time.Time) {
	if l.opts.Sender == nil {
		return
	}
	project := identity.ResolveProject(l.opts.ProjectTag, l.opts.Args, l.opts.WorkingDir)
	l.opts.Sender.SendConnect(l.launcherID, project, l.opts.CLI, l.opts.Args, l.opts.WorkingDir, now)
	l.opts.Sender.SendStateUpdate(l.launcherID, l.sessionID, transport.StatusIdle, nil, now)
	l.notifiedState = detect.Idle
}

// sample is T3: a 1 Hz read of the detector's state under the shared
// mutex (spec §5 — "held only for snapshot work, released before I/O"),
// emitting StateUpdate/ContextUpdate through the transport.
func (l *Launcher) sample() {
	l.mu.Lock()
	state := l.opts.Tool.CurrentState()
	context := l.opts.Tool.UIAboveText()
	l.mu.Unlock()

	if l.opts.Sender == nil {
		l.notifiedState = state
		l.lastContext = context
		return
	}

	now := time.Now().UTC()

	if state != l.notifiedState {
		// Connected→Idle suppression (spec §4.2.1/§4.5): never notify
		// a direct Connected→Idle transition.
		if !(l.notifiedState == detect.Connected && state == detect.Idle) {
			l.notifiedState = state
			var ctxPtr *string
			if context != "" {
				ctxPtr = &context
			}
			l.opts.Sender.SendStateUpdate(l.launcherID, l.sessionID, toWireStatus(state), ctxPtr, now)
		}
	}

	if context != l.lastContext {
		l.lastContext = context
		var ctxPtr *string
		if context != "" {
			ctxPtr = &context
		}
		l.opts.Sender.SendContextUpdate(l.launcherID, l.sessionID, ctxPtr, now)
	}
}

func toWireStatus(s detect.SessionState) transport.SessionStatus {
	switch s {
	case detect.Busy:
		return transport.StatusBusy
	case detect.WaitingInput:
		return transport.StatusWaitingInput
	case detect.Idle:
		return transport.StatusIdle
	case detect.Error:
		return transport.StatusError
	default:
		return transport.StatusConnected
	}
}

func exitCodeFrom(err error) int {
	if ee, ok := err.(interface{ ExitCode() int }); ok {
		code := ee.ExitCode()
		if code < 0 {
			return 1
		}
		return code
	}
	return 1
}

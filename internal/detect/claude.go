package detect

import (
	"strings"
	"time"

	"github.com/kizaaku/climonitor-launcher/internal/screen"
)

// ClaudeDetector classifies Claude-like CLIs (those that render an
// "esc to interrupt" busy line and framed approval dialogs). Grounded
// on the original screen_state_detector's analyze_ui_box_content /
// analyze_execution_context logic, adapted to the exported Detector
// contract.
type ClaudeDetector struct {
	emu *screen.Emulator

	state      SessionState
	context    string
	lastBusyAt time.Time
}

// NewClaudeDetector wraps a freshly-sized emulator.
func NewClaudeDetector(rows, cols int) *ClaudeDetector {
	return &ClaudeDetector{
		emu:   screen.NewEmulator(rows, cols),
		state: Connected,
	}
}

func (d *ClaudeDetector) Resize(rows, cols int) { d.emu.Resize(rows, cols) }

func (d *ClaudeDetector) CurrentState() SessionState { return d.state }

func (d *ClaudeDetector) UIAboveText() string { return d.context }

// Process feeds raw PTY bytes to the emulator and reclassifies state.
func (d *ClaudeDetector) Process(data []byte) {
	d.emu.Process(data)
	d.reclassify()
}

func (d *ClaudeDetector) reclassify() {
	lines := d.emu.Lines()
	boxes := d.emu.FindBoxes()

	if len(boxes) > 0 {
		if ctx, ok := extractContext(boxes[len(boxes)-1].AboveLines); ok {
			d.context = ctx
		} else {
			d.context = ""
		}
	} else {
		d.context = ""
	}

	for _, l := range lines {
		if strings.Contains(l, "esc to interrupt") {
			d.enterBusy()
			return
		}
	}

	if len(boxes) == 0 {
		return
	}
	box := boxes[len(boxes)-1]

	var next SessionState
	switch {
	case containsAny(box.ContentLines, "Do you want", "Would you like", "May I", "proceed?", "y/n"):
		next = WaitingInput
	case containsAny(box.BelowLines, "✗", "failed", "Error"):
		next = Error
	default:
		next = Idle
	}

	d.transition(next)
}

func (d *ClaudeDetector) enterBusy() {
	if d.state != Busy {
		d.lastBusyAt = time.Now()
	}
	d.state = Busy
}

// transition applies the Connected→Idle suppression and the
// Busy→non-Busy 100ms debounce before committing a new state.
func (d *ClaudeDetector) transition(next SessionState) {
	if d.state == Connected && next == Idle {
		return
	}
	if d.state == Busy && next != Busy {
		if time.Since(d.lastBusyAt) < 100*time.Millisecond {
			return
		}
	}
	d.state = next
}

func containsAny(lines []string, substrs ...string) bool {
	for _, l := range lines {
		for _, s := range substrs {
			if strings.Contains(l, s) {
				return true
			}
		}
	}
	return false
}

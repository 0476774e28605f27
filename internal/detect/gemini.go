package detect

import (
	"strings"

	"github.com/kizaaku/climonitor-launcher/internal/screen"
)

// GeminiDetector classifies Gemini-like CLIs, which signal state via
// whole-screen substrings rather than a single authoritative box line.
type GeminiDetector struct {
	emu     *screen.Emulator
	state   SessionState
	context string
}

func NewGeminiDetector(rows, cols int) *GeminiDetector {
	return &GeminiDetector{
		emu:   screen.NewEmulator(rows, cols),
		state: Connected,
	}
}

func (d *GeminiDetector) Resize(rows, cols int) { d.emu.Resize(rows, cols) }

func (d *GeminiDetector) CurrentState() SessionState { return d.state }

func (d *GeminiDetector) UIAboveText() string { return d.context }

func (d *GeminiDetector) Process(data []byte) {
	d.emu.Process(data)
	d.reclassify()
}

func (d *GeminiDetector) reclassify() {
	lines := d.emu.Lines()
	box, hasBox := latestBox(d.emu)

	switch {
	case anyContains(lines, "Waiting for user confirmation"):
		d.state = WaitingInput
	case anyContains(lines, "(esc to cancel"):
		d.state = Busy
	case hasBox && boxHasPromptLine(box.ContentLines):
		d.state = Idle
	default:
		// keep the current state
	}

	if hasBox {
		if ctx, found := extractContext(box.AboveLines); found {
			d.context = ctx
			return
		}
	}
	d.context = ""
}

func anyContains(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func latestBox(emu *screen.Emulator) (screen.UIBox, bool) {
	boxes := emu.FindBoxes()
	if len(boxes) == 0 {
		return screen.UIBox{}, false
	}
	return boxes[len(boxes)-1], true
}

func boxHasPromptLine(contentLines []string) bool {
	for _, l := range contentLines {
		if strings.HasPrefix(strings.TrimSpace(l), ">") {
			return true
		}
	}
	return false
}

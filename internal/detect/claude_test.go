package detect

import (
	"testing"
	"time"
)

func TestClaudeBusyOnEscToInterrupt(t *testing.T) {
	d := NewClaudeDetector(10, 40)
	d.Process([]byte("\x1b[2J\x1b[H"))
	d.Process([]byte("some output\r\n(esc to interrupt)\r\n"))

	if d.CurrentState() != Busy {
		t.Fatalf("expected Busy, got %v", d.CurrentState())
	}
}

func TestClaudeBusyToIdleAfterDebounce(t *testing.T) {
	d := NewClaudeDetector(10, 40)
	d.Process([]byte("\x1b[2J\x1b[H"))
	d.Process([]byte("(esc to interrupt)\r\n"))
	if d.CurrentState() != Busy {
		t.Fatalf("expected Busy, got %v", d.CurrentState())
	}

	// Immediately clearing the busy line should still read Busy (debounce).
	d.Process([]byte("\x1b[2J\x1b[H"))
	d.Process([]byte("╭────────╮\r\n│ >      │\r\n╰────────╯\r\n"))
	if d.CurrentState() != Busy {
		t.Fatalf("expected debounced Busy, got %v", d.CurrentState())
	}

	time.Sleep(110 * time.Millisecond)
	d.Process([]byte("\x1b[2J\x1b[H"))
	d.Process([]byte("╭────────╮\r\n│ >      │\r\n╰────────╯\r\n"))
	if d.CurrentState() != Idle {
		t.Fatalf("expected Idle after debounce window, got %v", d.CurrentState())
	}
	if d.UIAboveText() != "" {
		t.Fatalf("expected cleared context, got %q", d.UIAboveText())
	}
}

func TestClaudeConnectedStaysOnBarePrompt(t *testing.T) {
	d := NewClaudeDetector(10, 40)
	d.Process([]byte("\x1b[2J\x1b[H"))
	d.Process([]byte("╭────────╮\r\n│ >      │\r\n╰────────╯\r\n"))

	if d.CurrentState() != Connected {
		t.Fatalf("expected Connected suppressed, got %v", d.CurrentState())
	}
}

func TestClaudeWaitingInputConfirmation(t *testing.T) {
	d := NewClaudeDetector(10, 60)
	d.Process([]byte("\x1b[2J\x1b[H"))
	d.Process([]byte("╭──────────────────────────────╮\r\n"))
	d.Process([]byte("│ Do you want to create hello.txt? │\r\n"))
	d.Process([]byte("╰──────────────────────────────╯\r\n"))

	if d.CurrentState() != WaitingInput {
		t.Fatalf("expected WaitingInput, got %v", d.CurrentState())
	}
}

func TestClaudeContextExtractionWithCircle(t *testing.T) {
	d := NewClaudeDetector(10, 60)
	d.Process([]byte("\x1b[2J\x1b[H"))
	d.Process([]byte("⏺ Running tests\r\n"))
	d.Process([]byte("╭────────╮\r\n│ esc to interrupt │\r\n╰────────╯\r\n"))

	if d.UIAboveText() != "Running tests" {
		t.Fatalf("expected extracted context, got %q", d.UIAboveText())
	}
}

func TestClaudeErrorFromBelowLine(t *testing.T) {
	d := NewClaudeDetector(10, 60)
	// Prime state away from Connected via a Busy cycle, then settle.
	d.Process([]byte("\x1b[2J\x1b[H"))
	d.Process([]byte("(esc to interrupt)\r\n"))
	time.Sleep(110 * time.Millisecond)

	d.Process([]byte("\x1b[2J\x1b[H"))
	d.Process([]byte("╭────────╮\r\n│ >      │\r\n╰────────╯\r\nError: failed\r\n"))

	if d.CurrentState() != Error {
		t.Fatalf("expected Error, got %v", d.CurrentState())
	}
}

package screen

import "testing"

func TestFindBoxesCompleteBox(t *testing.T) {
	e := NewEmulator(10, 30)
	e.Process([]byte("\x1b[2J\x1b[H"))
	e.Process([]byte("some context line\r\n"))
	e.Process([]byte("╭─────────╮\r\n"))
	e.Process([]byte("│ hello   │\r\n"))
	e.Process([]byte("╰─────────╯\r\n"))
	e.Process([]byte("status below\r\n"))

	boxes := e.FindBoxes()
	if len(boxes) != 1 {
		t.Fatalf("expected 1 box, got %d", len(boxes))
	}
	b := boxes[0]
	if len(b.ContentLines) != 1 || b.ContentLines[0] != "hello" {
		t.Fatalf("unexpected content lines: %#v", b.ContentLines)
	}
	if len(b.AboveLines) == 0 || b.AboveLines[len(b.AboveLines)-1] != "some context line" {
		t.Fatalf("unexpected above lines: %#v", b.AboveLines)
	}
	if len(b.BelowLines) == 0 {
		t.Fatalf("expected below lines, got none")
	}
}

func TestFindBoxesBottomMostLast(t *testing.T) {
	e := NewEmulator(20, 30)
	e.Process([]byte("\x1b[2J\x1b[H"))
	e.Process([]byte("╭───╮\r\n│ a │\r\n╰───╯\r\n"))
	e.Process([]byte("\r\n\r\n"))
	e.Process([]byte("╭───╮\r\n│ b │\r\n╰───╯\r\n"))

	boxes := e.FindBoxes()
	if len(boxes) != 2 {
		t.Fatalf("expected 2 boxes, got %d", len(boxes))
	}
	if boxes[len(boxes)-1].ContentLines[0] != "b" {
		t.Fatalf("expected bottom-most box last, got %#v", boxes)
	}
}

func TestFindBoxesRejectsNestedOpener(t *testing.T) {
	e := NewEmulator(10, 30)
	e.Process([]byte("\x1b[2J\x1b[H"))
	e.Process([]byte("╭───╮\r\n│ a │\r\n╭───╮\r\n│ b │\r\n╰───╯\r\n"))

	boxes := e.FindBoxes()
	for _, b := range boxes {
		if b.StartRow == 0 {
			t.Fatalf("expected the outer (invalid) box to be rejected, got %#v", b)
		}
	}
}

func TestFindBoxesPartialFallback(t *testing.T) {
	e := NewEmulator(10, 30)
	e.Process([]byte("\x1b[2J\x1b[H"))
	e.Process([]byte("│ line one\r\n│ line two\r\n│ line three\r\n"))

	boxes := e.FindBoxes()
	if len(boxes) != 1 {
		t.Fatalf("expected 1 partial box, got %d", len(boxes))
	}
	if len(boxes[0].ContentLines) != 3 {
		t.Fatalf("expected 3 content lines, got %#v", boxes[0].ContentLines)
	}
}

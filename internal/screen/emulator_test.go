package screen

import (
	"strings"
	"testing"
)

func TestLinesShapeMatchesDimensions(t *testing.T) {
	e := NewEmulator(10, 40)
	e.Process([]byte("hello\r\nworld"))
	lines := e.Lines()
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines, got %d", len(lines))
	}
	for i, l := range lines {
		if len([]rune(l)) != 40 {
			t.Fatalf("line %d: expected width 40, got %d", i, len([]rune(l)))
		}
	}
}

func TestResizeDimensions(t *testing.T) {
	e := NewEmulator(24, 80)
	e.Resize(30, 100)
	rows, cols := e.Dimensions()
	if rows != 30 || cols != 100 {
		t.Fatalf("expected (30,100), got (%d,%d)", rows, cols)
	}
	lines := e.Lines()
	if len(lines) != 30 || len([]rune(lines[0])) != 100 {
		t.Fatalf("lines not resized correctly")
	}
}

func TestProcessSplitAcrossCalls(t *testing.T) {
	full := "\x1b[31mred\x1b[0m text"
	for split := 0; split <= len(full); split++ {
		a := NewEmulator(5, 20)
		a.Process([]byte(full))

		b := NewEmulator(5, 20)
		b.Process([]byte(full[:split]))
		b.Process([]byte(full[split:]))

		la, lb := a.Lines(), b.Lines()
		for i := range la {
			if la[i] != lb[i] {
				t.Fatalf("split at %d: line %d mismatch: %q vs %q", split, i, la[i], lb[i])
			}
		}
	}
}

func TestProcessSplitMultiByteRune(t *testing.T) {
	full := "⏺ done"
	bytesFull := []byte(full)
	for split := 1; split < len(bytesFull); split++ {
		e := NewEmulator(3, 20)
		e.Process(bytesFull[:split])
		e.Process(bytesFull[split:])
		if !strings.Contains(e.Lines()[0], "⏺ done") {
			t.Fatalf("split at %d: expected rune preserved, got %q", split, e.Lines()[0])
		}
	}
}

func TestScreenClearMaterializesSpaces(t *testing.T) {
	e := NewEmulator(5, 10)
	e.Process([]byte("╭───╮"))
	e.Process([]byte("\x1b[2J"))
	for _, l := range e.Lines() {
		for _, c := range l {
			if c != ' ' {
				t.Fatalf("expected blank cell after clear, found %q", c)
			}
		}
	}
}

func TestCursorMoveUpPreservesColumn(t *testing.T) {
	e := NewEmulator(5, 10)
	e.Process([]byte("\x1b[3;5Habc"))
	e.Process([]byte("\x1b[2A"))
	if e.cursorCol != 7 {
		t.Fatalf("expected col preserved at 7, got %d", e.cursorCol)
	}
	if e.cursorRow != 0 {
		t.Fatalf("expected row 0, got %d", e.cursorRow)
	}
}

func TestDECSTBMHomesCursor(t *testing.T) {
	e := NewEmulator(10, 20)
	e.Process([]byte("\x1b[3;7r"))
	if e.scrollTop != 2 || e.scrollBot != 6 {
		t.Fatalf("expected scroll region [2,6], got [%d,%d]", e.scrollTop, e.scrollBot)
	}
	if e.cursorRow != 2 || e.cursorCol != 0 {
		t.Fatalf("expected cursor homed to (2,0), got (%d,%d)", e.cursorRow, e.cursorCol)
	}
}

func TestScrollKeepsGridSizeFixed(t *testing.T) {
	e := NewEmulator(4, 10)
	for i := 0; i < 20; i++ {
		e.Process([]byte("x\r\n"))
	}
	if len(e.grid) != 4 {
		t.Fatalf("expected grid to stay at 4 rows, got %d", len(e.grid))
	}
}

package screen

import "unicode/utf8"

// parserState tracks the VT byte-stream parser across Process calls so a
// CSI sequence may be split arbitrarily between two writes.
type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateCSI
	stateOSC
)

// Emulator reconstructs a child process's visible screen from its raw
// PTY output. It implements the subset of ECMA-48/ANSI X3.64 the target
// CLIs emit (see spec §4.1); everything else is silently ignored.
//
// Emulator is not safe for concurrent use — callers serialize Process
// and the accessor methods themselves (the launcher orchestrator owns
// it from a single goroutine and takes a snapshot under a mutex for the
// periodic sampler).
type Emulator struct {
	rows int // terminal rows, as seen by the caller
	cols int // internal column count: ptyCols + 1 (see Grid in spec §3)

	grid []line

	cursorRow, cursorCol int
	scrollTop, scrollBot int

	fg, bg             *uint8
	bold, italic, ulin bool

	state    parserState
	params   []int
	curParam int
	haveNum  bool
	private  bool

	// altScreen/bracketedPaste/focusTracking are opaque flags tracked per
	// spec §4.1 but not otherwise rendered onto the grid.
	altScreen       bool
	bracketedPaste  bool
	focusTracking   bool
	cursorVisible   bool

	// utf8Buf holds bytes of a multi-byte rune split across Process calls.
	utf8Buf []byte
}

type line []Cell

func newLine(cols int) line {
	l := make(line, cols)
	for i := range l {
		l[i] = emptyCell()
	}
	return l
}

// NewEmulator creates an Emulator sized to the given PTY dimensions.
func NewEmulator(rows, ptyCols int) *Emulator {
	e := &Emulator{}
	e.reinit(rows, ptyCols)
	return e
}

func (e *Emulator) reinit(rows, ptyCols int) {
	e.rows = rows
	e.cols = ptyCols + 1
	e.grid = make([]line, rows)
	for i := range e.grid {
		e.grid[i] = newLine(e.cols)
	}
	e.cursorRow, e.cursorCol = 0, 0
	e.scrollTop, e.scrollBot = 0, rows-1
	e.fg, e.bg = nil, nil
	e.bold, e.italic, e.ulin = false, false, false
	e.state = stateGround
	e.params = nil
	e.curParam = 0
	e.haveNum = false
	e.private = false
	e.altScreen = false
	e.bracketedPaste = false
	e.focusTracking = false
	e.cursorVisible = true
	e.utf8Buf = nil
}

// Resize reinitializes the grid to the new dimensions. History is not
// preserved; the cursor returns to (0,0) and the scroll region resets
// to the full screen.
func (e *Emulator) Resize(rows, ptyCols int) {
	e.reinit(rows, ptyCols)
}

// Dimensions returns the externally-visible (rows, ptyCols) size.
func (e *Emulator) Dimensions() (rows, ptyCols int) {
	return e.rows, e.cols - 1
}

// Process feeds raw PTY bytes into the parser. It is idempotent across
// calls: process(b1); process(b2) behaves as process(b1 ++ b2), because
// all parser state (the current escape/CSI state, pending params, and a
// partially-decoded UTF-8 rune) is carried across calls.
func (e *Emulator) Process(data []byte) {
	if len(e.utf8Buf) > 0 {
		data = append(e.utf8Buf, data...)
		e.utf8Buf = nil
	}
	for len(data) > 0 {
		b := data[0]

		// Only decode runes in ground state; escape/CSI/OSC sequences are
		// pure ASCII in the subset we support.
		if e.state == stateGround && b >= 0x80 {
			r, size := utf8.DecodeRune(data)
			if r == utf8.RuneError && size <= 1 {
				if !utf8.FullRune(data) {
					// Incomplete multi-byte sequence at the end of this
					// chunk: stash it for the next Process call.
					e.utf8Buf = append(e.utf8Buf, data...)
					return
				}
				// Genuinely invalid byte: discard and continue.
				data = data[1:]
				continue
			}
			e.print(r)
			data = data[size:]
			continue
		}

		e.step(b)
		data = data[1:]
	}
}

func (e *Emulator) step(b byte) {
	switch e.state {
	case stateGround:
		switch {
		case b == 0x1b:
			e.state = stateEscape
		case b == '\n':
			e.newline()
		case b == '\r':
			e.cursorCol = 0
		case b == '\t':
			next := ((e.cursorCol / 8) + 1) * 8
			if next >= e.cols {
				next = e.cols - 1
			}
			e.cursorCol = next
		case b == 0x08:
			if e.cursorCol > 0 {
				e.cursorCol--
			}
		case b < 0x20:
			// other control bytes ignored
		default:
			e.print(rune(b))
		}
	case stateEscape:
		switch b {
		case '[':
			e.state = stateCSI
			e.params = e.params[:0]
			e.curParam = 0
			e.haveNum = false
		case ']':
			e.state = stateOSC
		default:
			// An intermediate byte (0x20-0x2f, e.g. the '(' of ESC ( B)
			// keeps the parser here so the final byte is dropped too;
			// any other byte ends the unsupported escape.
			if b < 0x20 || b > 0x2f {
				e.state = stateGround
			}
		}
	case stateCSI:
		switch {
		case b >= '0' && b <= '9':
			e.curParam = e.curParam*10 + int(b-'0')
			e.haveNum = true
		case b == ';':
			e.params = append(e.params, e.curParam)
			e.curParam = 0
			e.haveNum = false
		case (b >= 0x3c && b <= 0x3f) || (b >= 0x20 && b <= 0x2f):
			// private-mode marker ('<' '=' '>' '?') or intermediate byte:
			// '?' is recorded in e.private, which csiDispatch does not
			// consult; the others are dropped.
			if b == '?' {
				e.private = true
			}
		default:
			if e.haveNum || len(e.params) > 0 {
				e.params = append(e.params, e.curParam)
			}
			e.csiDispatch(b, e.params)
			e.state = stateGround
			e.private = false
		}
	case stateOSC:
		// BEL ends the string; ESC starts the ST terminator (ESC \),
		// whose backslash the escape state then drops.
		switch b {
		case 0x07:
			e.state = stateGround
		case 0x1b:
			e.state = stateEscape
		}
	}
}

func (e *Emulator) newline() {
	e.cursorRow++
	if e.cursorRow > e.scrollBot {
		e.cursorRow = e.scrollBot
		e.scrollUp(1)
	}
}

func (e *Emulator) print(r rune) {
	if e.cursorRow < 0 || e.cursorRow >= len(e.grid) {
		return
	}
	e.grid[e.cursorRow][e.cursorCol] = Cell{
		Char: r, Fg: e.fg, Bg: e.bg,
		Bold: e.bold, Italic: e.italic, Underline: e.ulin,
	}
	e.cursorCol++
	if e.cursorCol >= e.cols {
		e.cursorCol = 0
		e.newline()
	}
}

func (e *Emulator) clampCursor() {
	if e.cursorRow < 0 {
		e.cursorRow = 0
	}
	if e.cursorRow >= e.rows {
		e.cursorRow = e.rows - 1
	}
	if e.cursorCol < 0 {
		e.cursorCol = 0
	}
	if e.cursorCol >= e.cols {
		e.cursorCol = e.cols - 1
	}
}

// Lines returns a snapshot of the currently visible rows, each trimmed
// to the externally-visible pty column width (the absorb column is
// never returned to observers).
func (e *Emulator) Lines() []string {
	ptyCols := e.cols - 1
	out := make([]string, len(e.grid))
	for i, l := range e.grid {
		buf := make([]rune, ptyCols)
		for c := 0; c < ptyCols; c++ {
			buf[c] = l[c].Char
		}
		out[i] = string(buf)
	}
	return out
}

// CellAt returns the cell at (row, col) within the externally-visible
// grid, or the zero Cell if out of bounds.
func (e *Emulator) CellAt(row, col int) Cell {
	if row < 0 || row >= len(e.grid) || col < 0 || col >= e.cols-1 {
		return Cell{}
	}
	return e.grid[row][col]
}

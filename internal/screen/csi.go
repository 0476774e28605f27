package screen

// csiDispatch applies one fully-parsed CSI sequence. params holds the
// numeric parameters in order. A leading '?' (DEC private mode) is not
// passed in, so 'h'/'l' treat private and ANSI modes with the same
// number alike. Ported from the original screen_buffer.rs
// csi_dispatch, generalized to Go idiom.
func (e *Emulator) csiDispatch(final byte, params []int) {
	p := func(i, def int) int {
		if i < len(params) {
			return params[i]
		}
		return def
	}

	switch final {
	case 'H', 'f':
		row := p(0, 1)
		col := p(1, 1)
		e.cursorRow = row - 1
		e.cursorCol = col - 1
		e.clampCursor()
	case 'A':
		e.cursorRow -= p(0, 1)
		if e.cursorRow < 0 {
			e.cursorRow = 0
		}
	case 'B':
		e.cursorRow += p(0, 1)
		if e.cursorRow > e.rows-1 {
			e.cursorRow = e.rows - 1
		}
	case 'C':
		e.cursorCol += p(0, 1)
		if e.cursorCol > e.cols-1 {
			e.cursorCol = e.cols - 1
		}
	case 'D':
		e.cursorCol -= p(0, 1)
		if e.cursorCol < 0 {
			e.cursorCol = 0
		}
	case 'G':
		e.cursorCol = p(0, 1) - 1
		if e.cursorCol < 0 {
			e.cursorCol = 0
		}
		if e.cursorCol > e.cols-1 {
			e.cursorCol = e.cols - 1
		}
	case 'J':
		switch p(0, 0) {
		case 0:
			e.clearFromCursorToEnd()
		case 1:
			e.clearFromStartToCursor()
		case 2:
			e.clearScreen()
		}
	case 'K':
		e.clearLine(p(0, 0))
	case 'L':
		e.insertLines(p(0, 1))
	case 'M':
		e.deleteLines(p(0, 1))
	case '@':
		e.insertChars(p(0, 1))
	case 'P':
		e.deleteChars(p(0, 1))
	case 'S':
		e.scrollUp(p(0, 1))
	case 'T':
		e.scrollDown(p(0, 1))
	case 'r':
		top := p(0, 1)
		bot := p(1, e.rows)
		e.scrollTop = top - 1
		if e.scrollTop < 0 {
			e.scrollTop = 0
		}
		e.scrollBot = bot - 1
		if e.scrollBot > e.rows-1 {
			e.scrollBot = e.rows - 1
		}
		if e.scrollBot < e.scrollTop {
			e.scrollBot = e.scrollTop
		}
		e.cursorRow, e.cursorCol = e.scrollTop, 0
	case 'm':
		e.sgr(params)
	case 'h':
		e.setMode(params, true)
	case 'l':
		e.setMode(params, false)
	}
}

func (e *Emulator) sgr(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		v := params[i]
		switch {
		case v == 0:
			e.fg, e.bg = nil, nil
			e.bold, e.italic, e.ulin = false, false, false
		case v == 1:
			e.bold = true
		case v == 3:
			e.italic = true
		case v == 4:
			e.ulin = true
		case v == 22:
			e.bold = false
		case v == 23:
			e.italic = false
		case v == 24:
			e.ulin = false
		case v >= 30 && v <= 37:
			e.fg = u8p(uint8(v - 30))
		case v == 39:
			e.fg = nil
		case v >= 40 && v <= 47:
			e.bg = u8p(uint8(v - 40))
		case v == 49:
			e.bg = nil
		case v >= 90 && v <= 97:
			e.fg = u8p(uint8(v - 90 + 8))
		case v >= 100 && v <= 107:
			e.bg = u8p(uint8(v - 100 + 8))
		case v == 38 || v == 48:
			// extended 256-colour (38;5;n) or truecolour (38;2;r;g;b):
			// the sub-parameters are consumed without being rendered,
			// so they are never read as SGR codes of their own.
			if i+1 < len(params) && params[i+1] == 5 {
				i += 2
			} else if i+1 < len(params) && params[i+1] == 2 {
				i += 4
			}
		}
	}
}

func u8p(v uint8) *uint8 { return &v }

func (e *Emulator) setMode(params []int, enabled bool) {
	for _, v := range params {
		switch v {
		case 25:
			e.cursorVisible = enabled
		case 47, 1047, 1049:
			if enabled {
				e.clearScreen()
			}
			e.altScreen = enabled
		case 2004:
			e.bracketedPaste = enabled
		case 1004:
			e.focusTracking = enabled
		}
	}
}

func (e *Emulator) clearFromCursorToEnd() {
	if e.cursorRow >= 0 && e.cursorRow < len(e.grid) {
		row := e.grid[e.cursorRow]
		for c := e.cursorCol; c < len(row); c++ {
			row[c] = emptyCell()
		}
	}
	for r := e.cursorRow + 1; r < len(e.grid); r++ {
		e.grid[r] = newLine(e.cols)
	}
}

func (e *Emulator) clearFromStartToCursor() {
	for r := 0; r < e.cursorRow && r < len(e.grid); r++ {
		e.grid[r] = newLine(e.cols)
	}
	if e.cursorRow >= 0 && e.cursorRow < len(e.grid) {
		row := e.grid[e.cursorRow]
		for c := 0; c <= e.cursorCol && c < len(row); c++ {
			row[c] = emptyCell()
		}
	}
}

func (e *Emulator) clearScreen() {
	for i := range e.grid {
		e.grid[i] = newLine(e.cols)
	}
	e.cursorRow, e.cursorCol = 0, 0
}

func (e *Emulator) clearLine(mode int) {
	if e.cursorRow < 0 || e.cursorRow >= len(e.grid) {
		return
	}
	row := e.grid[e.cursorRow]
	switch mode {
	case 0:
		for c := e.cursorCol; c < len(row); c++ {
			row[c] = emptyCell()
		}
	case 1:
		for c := 0; c <= e.cursorCol && c < len(row); c++ {
			row[c] = emptyCell()
		}
	case 2:
		for c := range row {
			row[c] = emptyCell()
		}
	}
}

// scrollUp shifts rows within the scroll region up by n, filling the
// freed rows at the bottom with empty cells. Grid size never changes.
func (e *Emulator) scrollUp(n int) {
	if e.scrollTop >= e.scrollBot {
		return
	}
	regionSize := e.scrollBot - e.scrollTop + 1
	if n > regionSize {
		n = regionSize
	}
	for i := 0; i < n; i++ {
		for row := e.scrollTop; row < e.scrollBot; row++ {
			e.grid[row] = e.grid[row+1]
		}
		e.grid[e.scrollBot] = newLine(e.cols)
	}
}

// scrollDown shifts rows within the scroll region down by n, filling
// the freed rows at the top with empty cells.
func (e *Emulator) scrollDown(n int) {
	if e.scrollTop >= e.scrollBot {
		return
	}
	regionSize := e.scrollBot - e.scrollTop + 1
	if n > regionSize {
		n = regionSize
	}
	for i := 0; i < n; i++ {
		for row := e.scrollBot; row > e.scrollTop; row-- {
			e.grid[row] = e.grid[row-1]
		}
		e.grid[e.scrollTop] = newLine(e.cols)
	}
}

func (e *Emulator) insertLines(n int) {
	if e.cursorRow > e.scrollBot {
		return
	}
	regionSize := e.scrollBot - e.cursorRow + 1
	if n > regionSize {
		n = regionSize
	}
	for i := 0; i < n; i++ {
		for row := e.scrollBot; row > e.cursorRow; row-- {
			e.grid[row] = e.grid[row-1]
		}
		e.grid[e.cursorRow] = newLine(e.cols)
	}
}

func (e *Emulator) deleteLines(n int) {
	if e.cursorRow > e.scrollBot {
		return
	}
	regionSize := e.scrollBot - e.cursorRow + 1
	if n > regionSize {
		n = regionSize
	}
	for i := 0; i < n; i++ {
		for row := e.cursorRow; row < e.scrollBot; row++ {
			e.grid[row] = e.grid[row+1]
		}
		e.grid[e.scrollBot] = newLine(e.cols)
	}
}

func (e *Emulator) insertChars(n int) {
	if e.cursorRow < 0 || e.cursorRow >= len(e.grid) {
		return
	}
	row := e.grid[e.cursorRow]
	if n > len(row)-e.cursorCol {
		n = len(row) - e.cursorCol
	}
	if n <= 0 {
		return
	}
	copy(row[e.cursorCol+n:], row[e.cursorCol:len(row)-n])
	for c := e.cursorCol; c < e.cursorCol+n; c++ {
		row[c] = emptyCell()
	}
}

func (e *Emulator) deleteChars(n int) {
	if e.cursorRow < 0 || e.cursorRow >= len(e.grid) {
		return
	}
	row := e.grid[e.cursorRow]
	if n > len(row)-e.cursorCol {
		n = len(row) - e.cursorCol
	}
	if n <= 0 {
		return
	}
	copy(row[e.cursorCol:], row[e.cursorCol+n:])
	for c := len(row) - n; c < len(row); c++ {
		row[c] = emptyCell()
	}
}

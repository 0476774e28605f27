package screen

import "strings"

// UIBox is a rectangular region bounded by Unicode box-drawing
// characters, used by the state detector as its classification anchor.
type UIBox struct {
	StartRow, EndRow int
	ContentLines     []string
	AboveLines       []string
	BelowLines       []string
}

// FindBoxes locates framed UI regions on the current snapshot, sorted
// with the bottom-most box last. Two strategies are tried in order: a
// complete box bounded top and bottom by box-drawing corners, else a
// partial box formed by a run of left-border lines.
func (e *Emulator) FindBoxes() []UIBox {
	lines := e.Lines()

	var boxes []UIBox
	processed := make(map[int]bool)

	for row := len(lines) - 1; row >= 0; row-- {
		if processed[row] {
			continue
		}
		trimmed := strings.TrimLeft(lines[row], " \t")
		if !(strings.HasPrefix(trimmed, "╭") || strings.HasPrefix(trimmed, "┌")) {
			continue
		}
		if strings.ContainsRune(lines[row], '�') {
			continue
		}
		box, ok := parseCompleteBox(lines, row)
		if !ok {
			continue
		}
		for r := box.StartRow; r <= box.EndRow; r++ {
			processed[r] = true
		}
		boxes = append(boxes, box)
	}

	if len(boxes) == 0 {
		if box, ok := findPartialBox(lines); ok {
			boxes = append(boxes, box)
		}
	}

	// Sort bottom-most last (ascending StartRow).
	for i := 1; i < len(boxes); i++ {
		for j := i; j > 0 && boxes[j-1].StartRow > boxes[j].StartRow; j-- {
			boxes[j-1], boxes[j] = boxes[j], boxes[j-1]
		}
	}
	return boxes
}

// parseCompleteBox searches downward from startRow for the first
// closing border, rejecting the box if another opener appears first.
func parseCompleteBox(lines []string, startRow int) (UIBox, bool) {
	var content []string
	endRow := -1

	for row := startRow + 1; row < len(lines); row++ {
		trimmed := strings.TrimLeft(lines[row], " \t")
		if strings.HasPrefix(trimmed, "╭") || strings.HasPrefix(trimmed, "┌") {
			return UIBox{}, false
		}
		if strings.HasPrefix(trimmed, "╰") || strings.HasPrefix(trimmed, "└") {
			endRow = row
			break
		}
		if strings.HasPrefix(trimmed, "│") || strings.HasPrefix(trimmed, "┃") {
			if c := stripBoxBorder(trimmed); c != "" {
				content = append(content, c)
			}
		}
	}
	if endRow < 0 {
		return UIBox{}, false
	}

	var above []string
	for row := 0; row < startRow; row++ {
		if strings.TrimSpace(lines[row]) != "" {
			above = append(above, strings.TrimRight(lines[row], " "))
		}
	}

	var below []string
	for row := endRow + 1; row < len(lines) && len(below) < 3; row++ {
		if strings.TrimSpace(lines[row]) != "" {
			below = append(below, strings.TrimRight(lines[row], " "))
		}
	}

	return UIBox{
		StartRow:     startRow,
		EndRow:       endRow,
		ContentLines: content,
		AboveLines:   above,
		BelowLines:   below,
	}, true
}

// findPartialBox collects a maximal contiguous run of left-border rows
// when no complete box is found.
func findPartialBox(lines []string) (UIBox, bool) {
	start, end := -1, -1
	var content []string

	for row, l := range lines {
		trimmed := strings.TrimLeft(l, " \t")
		if strings.HasPrefix(trimmed, "│") || strings.HasPrefix(trimmed, "┃") {
			if start < 0 {
				start = row
			}
			end = row
			if c := stripBoxBorder(trimmed); c != "" {
				content = append(content, c)
			}
			continue
		}
		if start >= 0 {
			break
		}
	}

	if start < 0 || end-start < 2 || len(content) == 0 {
		return UIBox{}, false
	}
	return UIBox{StartRow: start, EndRow: end, ContentLines: content}, true
}

func stripBoxBorder(trimmed string) string {
	s := strings.TrimPrefix(trimmed, "│")
	s = strings.TrimPrefix(s, "┃")
	s = strings.TrimRight(s, " \t")
	if i := strings.LastIndexAny(s, "│┃"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

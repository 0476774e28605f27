// Package screen reconstructs the visible grid of a child process's
// terminal from its raw PTY byte stream, and locates the box-drawn UI
// regions the state detector anchors on.
package screen

// Cell is one character position on the emulated screen.
type Cell struct {
	Char      rune
	Fg        *uint8
	Bg        *uint8
	Bold      bool
	Italic    bool
	Underline bool
}

// emptyCell returns a materialized blank cell — never a zero-value
// struct left over from a previous write.
func emptyCell() Cell {
	return Cell{Char: ' '}
}

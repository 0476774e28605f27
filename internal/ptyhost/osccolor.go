package ptyhost

import (
	"fmt"
	"os"
	"strconv"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// DetectOSCColors reads the launcher's own controlling terminal's
// foreground/background colors via termenv, for seeding the answers
// Host echoes back to a child's OSC 10/11 queries (spec §4.3: the
// child should see the real terminal palette, not a stand-in). Returns
// empty strings when stdout isn't a TTY or the terminal doesn't report
// colors; RespondOSCColors then answers with white on black.
func DetectOSCColors() (fg, bg string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return "", ""
	}
	output := termenv.NewOutput(os.Stdout)
	if c := output.ForegroundColor(); c != nil {
		fg = colorToX11(c)
	}
	if c := output.BackgroundColor(); c != nil {
		bg = colorToX11(c)
	}
	return fg, bg
}

// colorToX11 converts a termenv.Color to the X11 "rgb:rrrr/gggg/bbbb"
// format OSC 10/11 replies use, adapted from the teacher's
// virtualterminal/util.go ColorToX11.
func colorToX11(c termenv.Color) string {
	if c == nil {
		return ""
	}
	if v, ok := c.(termenv.RGBColor); ok {
		hex := string(v)
		if len(hex) == 7 && hex[0] == '#' {
			r, _ := strconv.ParseUint(hex[1:3], 16, 8)
			g, _ := strconv.ParseUint(hex[3:5], 16, 8)
			b, _ := strconv.ParseUint(hex[5:7], 16, 8)
			return fmt.Sprintf("rgb:%04x/%04x/%04x", r*0x101, g*0x101, b*0x101)
		}
	}
	rgb := termenv.ConvertToRGB(c)
	r := uint8(rgb.R*255 + 0.5)
	g := uint8(rgb.G*255 + 0.5)
	b := uint8(rgb.B*255 + 0.5)
	return fmt.Sprintf("rgb:%04x/%04x/%04x", uint16(r)*0x101, uint16(g)*0x101, uint16(b)*0x101)
}

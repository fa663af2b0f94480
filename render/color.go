package render

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// RGB is a truecolor value; layers work in RGB and convert only on Flush
type RGB struct {
	R, G, B uint8
}

var (
	RGBBlack      = RGB{0, 0, 0}
	RGBWhite      = RGB{255, 255, 255}
	RGBBackground = RGB{24, 24, 32}
	RGBStatusBar  = RGB{48, 48, 64}
	RGBSelection  = RGB{255, 214, 10}
	RGBTether     = RGB{140, 140, 160}
)

// Tcell converts to a truecolor tcell color
func (c RGB) Tcell() tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// ParseColor accepts #rgb, #rrggbb and W3C color names
// Unknown input yields fallback
func ParseColor(s string, fallback RGB) RGB {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return fallback
	}
	if strings.HasPrefix(s, "#") && len(s) == 4 {
		s = "#" + string([]byte{s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c := tcell.GetColor(s)
	if c == tcell.ColorDefault {
		return fallback
	}
	r, g, b := c.RGB()
	if r < 0 {
		return fallback
	}
	return RGB{uint8(r), uint8(g), uint8(b)}
}

package report

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/palettevision/internal/colour"
)

// ANSI escape codes for terminal colours.
const (
	ansiReset    = "\033[0m"
	ansiBgPrefix = "\033[48;2;"
	ansiSuffix   = "m"
	swatchWidth  = 6
)

// Swatch returns a solid block of the colour using a 24-bit ANSI background.
func Swatch(c colour.RGB, width int) string {
	if width <= 0 {
		width = swatchWidth
	}
	bg := fmt.Sprintf("%s%d;%d;%d%s", ansiBgPrefix, c.R, c.G, c.B, ansiSuffix)
	return bg + strings.Repeat(" ", width) + ansiReset
}

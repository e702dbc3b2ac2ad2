package terminal

import (
	"io"
	"os"

	"github.com/moby/term"
)

const defaultWidth = 120

// Width returns the width in characters of the terminal behind out, falling
// back to stdout and then to 120 columns.
func Width(out io.Writer) int {
	fd, isTerminal := term.GetFdInfo(out)
	if !isTerminal {
		fd, isTerminal = term.GetFdInfo(os.Stdout)
	}
	if !isTerminal {
		return defaultWidth
	}
	ws, err := term.GetWinsize(fd)
	if err != nil || ws.Width == 0 {
		return defaultWidth
	}
	return int(ws.Width)
}

// IsTerminal reports whether in is an interactive terminal.
func IsTerminal(in io.Reader) bool {
	_, isTerminal := term.GetFdInfo(in)
	return isTerminal
}

// ColumnWidths splits the terminal width between columns, giving each its
// share of the width left after the fixed columns. fixed holds a width per
// column, zero for columns that take a share.
func ColumnWidths(total int, fixed []int) []int {
	const separator = 3
	widths := make([]int, len(fixed))
	flexible := 0
	remaining := total - separator*(len(fixed)-1)
	for i, w := range fixed {
		if w > 0 {
			widths[i] = w
			remaining -= w
		} else {
			flexible++
		}
	}
	if flexible == 0 {
		return widths
	}
	share := max(remaining/flexible, 10)
	for i := range widths {
		if widths[i] == 0 {
			widths[i] = share
		}
	}
	return widths
}

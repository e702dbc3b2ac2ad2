package formatting

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// PrettyPrintTable writes rows as aligned columns separated by " | ".
// maxWidths is an optional slice of maximum widths for each column.
// Pass nil (or a slice of different length) to skip max-width limitations.
func PrettyPrintTable(w io.Writer, rows [][]string, maxWidths []int, header ...[]string) {
	var headerRow []string
	if len(header) > 0 {
		headerRow = header[0]
	}

	if len(rows) == 0 && headerRow == nil {
		return
	}

	numColumns := 0
	if headerRow != nil {
		numColumns = len(headerRow)
	} else if len(rows) > 0 {
		numColumns = len(rows[0])
	}

	if numColumns == 0 {
		return
	}
	colWidths := make([]int, numColumns)

	for i, cell := range headerRow {
		if w := runeWidth(cell); w > colWidths[i] {
			colWidths[i] = w
		}
	}

	for _, row := range rows {
		for i, cell := range row {
			if i < numColumns {
				if w := runeWidth(cell); w > colWidths[i] {
					colWidths[i] = w
				}
			}
		}
	}
	// If provided, limit the width per column.
	if maxWidths != nil && len(maxWidths) == numColumns {
		for i := range colWidths {
			colWidths[i] = min(colWidths[i], maxWidths[i])
		}
	}

	printRow := func(row []string) {
		var line strings.Builder
		for i, cell := range row {
			if i >= numColumns {
				break
			}
			// Truncate the cell to the allowed width.
			s := truncateString(cell, colWidths[i])
			if i < numColumns-1 {
				// Pad the cell so that each column aligns.
				s += spaces(colWidths[i] - runeWidth(s))
				s += " | "
			}
			line.WriteString(s)
		}
		fmt.Fprintln(w, line.String())
	}
	if headerRow != nil {
		printRow(headerRow)
	}
	for _, row := range rows {
		printRow(row)
	}
}

// SortRows orders rows by their first column, case insensitive.
func SortRows(rows [][]string) {
	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i][0]) < strings.ToLower(rows[j][0])
	})
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

func runeWidth(s string) int {
	return utf8.RuneCountInString(s)
}

// truncateString shortens s to fit the given width, appending an ellipsis if possible.
func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width > 1 {
		return string(runes[:width-1]) + "…"
	}
	return string(runes[:width])
}

package codec

import (
	"github.com/xuri/excelize/v2"
)

// cellBox is the smallest rectangle, zero-based and inclusive, that holds
// every non-empty cell of a grid. filled is the number of those cells.
type cellBox struct {
	top, left     int
	bottom, right int
	filled        int
}

// scanCells walks the grid once. ok is false when no cell holds a value.
func scanCells(rows [][]string) (box cellBox, ok bool) {
	for r, row := range rows {
		for c, v := range row {
			if v == "" {
				continue
			}
			if !ok {
				box = cellBox{top: r, left: c, bottom: r, right: c}
				ok = true
			}
			box.bottom = r
			box.left = min(box.left, c)
			box.right = max(box.right, c)
			box.filled++
		}
	}
	return box, ok
}

// ref renders the box as "A1:D10", or "$A$1:$D$10" when abs is set.
func (b cellBox) ref(abs bool) (string, error) {
	start, err := excelize.CoordinatesToCellName(b.left+1, b.top+1, abs)
	if err != nil {
		return "", err
	}
	end, err := excelize.CoordinatesToCellName(b.right+1, b.bottom+1, abs)
	if err != nil {
		return "", err
	}
	return start + ":" + end, nil
}

// UsedRange returns the range covering every non-empty cell, e.g. "A1:D10".
// It returns "" when all cells are empty.
func UsedRange(rows [][]string) string {
	box, ok := scanCells(rows)
	if !ok {
		return ""
	}
	ref, err := box.ref(false)
	if err != nil {
		return ""
	}
	return ref
}

// CountNonEmpty returns the number of non-empty cells.
func CountNonEmpty(rows [][]string) int {
	box, _ := scanCells(rows)
	return box.filled
}

package grid

import (
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/models"
)

// Clone returns a deep copy of s. Columns and rows share no backing arrays with s.
func Clone(s *models.Sheet) *models.Sheet {
	out := *s
	out.Columns = make([]models.Column, len(s.Columns))
	copy(out.Columns, s.Columns)
	out.Data = make([][]string, len(s.Data))
	for i, row := range s.Data {
		out.Data[i] = make([]string, len(row))
		copy(out.Data[i], row)
	}
	return &out
}

// Normalize repairs a sheet that violates the rectangular shape.
// Short rows are right-padded; rows longer than the column list get
// extra letter-named columns so no cell is dropped. It reports whether
// the sheet was changed.
func Normalize(s *models.Sheet) bool {
	changed := false
	if s.Columns == nil {
		s.Columns = []models.Column{}
		changed = true
	}
	if s.Data == nil {
		s.Data = [][]string{}
		changed = true
	}
	width := len(s.Columns)
	for _, row := range s.Data {
		if len(row) > width {
			width = len(row)
		}
	}
	if len(s.Columns) < width {
		syncColumnSeq(s)
		for len(s.Columns) < width {
			s.Columns = append(s.Columns, models.Column{
				ID:    columnID(s.ColumnSeq),
				Name:  ColumnName(len(s.Columns)),
				Width: DefaultColumnWidth,
			})
			s.ColumnSeq++
		}
		changed = true
	}
	for i, row := range s.Data {
		if len(row) < width {
			s.Data[i] = append(row, make([]string, width-len(row))...)
			changed = true
		}
	}
	return changed
}

// IsRectangular reports whether every row has exactly one cell per column.
func IsRectangular(s *models.Sheet) bool {
	for _, row := range s.Data {
		if len(row) != len(s.Columns) {
			return false
		}
	}
	return true
}

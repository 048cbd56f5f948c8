// Package grid provides structural edit operations on a single sheet.
//
// Every operation keeps the sheet rectangular: each row holds exactly
// one cell per column.
package grid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/models"
)

// DefaultColumnWidth is the width assigned to new columns.
const DefaultColumnWidth = 120

// ErrOutOfRange indicates a row or column index outside the sheet.
var ErrOutOfRange = errors.New("index out of range")

// ColumnName converts a zero-based column index to its letter sequence.
// 0 -> "A", 25 -> "Z", 26 -> "AA", 701 -> "ZZ", 702 -> "AAA".
func ColumnName(index int) string {
	if index < 0 {
		return ""
	}
	var buf []byte
	for index >= 0 {
		buf = append(buf, byte('A'+index%26))
		index = index/26 - 1
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// columnID formats the stable id for the n-th column ever created on a sheet.
func columnID(n int) string {
	return "col_" + strconv.Itoa(n)
}

// NewColumns returns count columns with letter names and sequential ids.
func NewColumns(count int) []models.Column {
	if count < 0 {
		count = 0
	}
	cols := make([]models.Column, count)
	for i := range cols {
		cols[i] = models.Column{ID: columnID(i), Name: ColumnName(i), Width: DefaultColumnWidth}
	}
	return cols
}

// CreateEmpty builds columnCount columns and rowCount rows of empty cells.
func CreateEmpty(columnCount, rowCount int) ([]models.Column, [][]string) {
	if columnCount < 0 {
		columnCount = 0
	}
	if rowCount < 0 {
		rowCount = 0
	}
	data := make([][]string, rowCount)
	for i := range data {
		data[i] = make([]string, columnCount)
	}
	return NewColumns(columnCount), data
}

// NewSheet builds an empty sheet of the given size.
func NewSheet(id, name string, columnCount, rowCount int, now time.Time) *models.Sheet {
	cols, data := CreateEmpty(columnCount, rowCount)
	return &models.Sheet{
		ID:           id,
		Name:         name,
		Columns:      cols,
		Data:         data,
		ColumnSeq:    len(cols),
		CreatedAt:    now,
		LastModified: now,
	}
}

// SetCell overwrites the value at (row, col).
func SetCell(s *models.Sheet, row, col int, value string) error {
	if row < 0 || row >= len(s.Data) {
		return fmt.Errorf("row %d: %w", row, ErrOutOfRange)
	}
	if col < 0 || col >= len(s.Data[row]) {
		return fmt.Errorf("column %d: %w", col, ErrOutOfRange)
	}
	s.Data[row][col] = value
	return nil
}

// RenameColumn replaces the display name of column col. The id and data are untouched.
func RenameColumn(s *models.Sheet, col int, name string) error {
	if col < 0 || col >= len(s.Columns) {
		return fmt.Errorf("column %d: %w", col, ErrOutOfRange)
	}
	s.Columns[col].Name = name
	return nil
}

// AppendRow adds one empty row at the bottom.
func AppendRow(s *models.Sheet) {
	s.Data = append(s.Data, make([]string, len(s.Columns)))
}

// InsertRowAfter inserts one empty row right after index.
// An index of -1 inserts at the top; the last row index is the same as AppendRow.
func InsertRowAfter(s *models.Sheet, index int) error {
	if index < -1 || index >= len(s.Data) {
		return fmt.Errorf("row %d: %w", index, ErrOutOfRange)
	}
	at := index + 1
	s.Data = append(s.Data, nil)
	copy(s.Data[at+1:], s.Data[at:])
	s.Data[at] = make([]string, len(s.Columns))
	return nil
}

// DeleteRow removes the row at index.
func DeleteRow(s *models.Sheet, index int) error {
	if index < 0 || index >= len(s.Data) {
		return fmt.Errorf("row %d: %w", index, ErrOutOfRange)
	}
	s.Data = append(s.Data[:index], s.Data[index+1:]...)
	return nil
}

// AppendColumn adds one column on the right and an empty cell to every row.
func AppendColumn(s *models.Sheet) models.Column {
	syncColumnSeq(s)
	col := models.Column{
		ID:    columnID(s.ColumnSeq),
		Name:  ColumnName(len(s.Columns)),
		Width: DefaultColumnWidth,
	}
	s.ColumnSeq++
	s.Columns = append(s.Columns, col)
	for i := range s.Data {
		s.Data[i] = append(s.Data[i], "")
	}
	return col
}

// DeleteColumn removes column index and the matching cell from every row.
func DeleteColumn(s *models.Sheet, index int) error {
	if index < 0 || index >= len(s.Columns) {
		return fmt.Errorf("column %d: %w", index, ErrOutOfRange)
	}
	syncColumnSeq(s)
	s.Columns = append(s.Columns[:index], s.Columns[index+1:]...)
	for i, row := range s.Data {
		if index < len(row) {
			s.Data[i] = append(row[:index], row[index+1:]...)
		}
	}
	return nil
}

// syncColumnSeq makes sure ColumnSeq is past every existing "col_<n>" id.
// Blobs written before the sequence was tracked carry a zero value.
func syncColumnSeq(s *models.Sheet) {
	for _, c := range s.Columns {
		n, err := strconv.Atoi(strings.TrimPrefix(c.ID, "col_"))
		if err == nil && n >= s.ColumnSeq {
			s.ColumnSeq = n + 1
		}
	}
	if s.ColumnSeq < len(s.Columns) {
		s.ColumnSeq = len(s.Columns)
	}
}

// Touch stamps the sheet as modified at now.
func Touch(s *models.Sheet, now time.Time) {
	s.LastModified = now
}

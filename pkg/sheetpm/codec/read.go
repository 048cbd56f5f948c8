package codec

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/grid"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/models"
	"github.com/xuri/excelize/v2"
)

// Import reads a whole container from r and returns its sheets as tables
// in declared sheet order. Nothing is returned unless every sheet parsed.
func Import(r io.Reader, opts Options) ([]Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return ImportBytes(data, opts)
}

// ImportBytes parses an in-memory container.
func ImportBytes(data []byte, opts Options) ([]Table, error) {
	if len(data) == 0 {
		return nil, ErrInvalidFormat
	}

	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{Password: opts.Password})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, NewCodecError("", "read", err))
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, ErrInvalidFormat
	}

	printAreas := readPrintAreas(f)
	tables := make([]Table, 0, len(sheetList))
	for _, sheetName := range sheetList {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, NewCodecError(sheetName, "read", err))
		}
		if dimension, err := f.GetSheetDimension(sheetName); err == nil {
			rows = padToDimension(rows, dimension)
		}
		tables = append(tables, Table{Name: sheetName, Rows: rows, PrintArea: printAreas[sheetName]})
	}
	return tables, nil
}

// maxPaddedCells bounds the grid a declared dimension may expand to.
const maxPaddedCells = 1 << 20

// padToDimension grows rows to the sheet's declared dimension ("A1:E10").
// Rows beyond it are kept; an unreadable or oversized dimension is ignored.
func padToDimension(rows [][]string, dimension string) [][]string {
	refs := strings.Split(strings.ReplaceAll(dimension, "$", ""), ":")
	cols, height, err := excelize.CellNameToCoordinates(refs[len(refs)-1])
	if err != nil || cols*height > maxPaddedCells {
		return rows
	}
	for len(rows) < height {
		rows = append(rows, nil)
	}
	for i, row := range rows {
		if len(row) < cols {
			padded := make([]string, cols)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return rows
}

// Width returns the length of the longest row.
func (t Table) Width() int {
	maxCols := 0
	for _, row := range t.Rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}
	return maxCols
}

// ToSheet builds a rectangular sheet from t. Every row is right-padded to the
// longest row with empty cells; nothing is truncated. Columns get letter names.
func ToSheet(t Table, id string, now time.Time) *models.Sheet {
	maxCols := t.Width()
	s := grid.NewSheet(id, t.Name, maxCols, 0, now)
	s.Data = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		dataRow := make([]string, maxCols)
		copy(dataRow, row)
		s.Data[i] = dataRow
	}
	return s
}

package codec

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/models"
	"github.com/xuri/excelize/v2"
)

// defaultSheet is the worksheet every new excelize file starts with.
const defaultSheet = "Sheet1"

// Export writes one worksheet per sheet, in the given order, to w.
// Rows are written in data order and cells in column order; column
// display names are not written.
func Export(w io.Writer, sheets []*models.Sheet, opts Options) error {
	if len(sheets) == 0 {
		return ErrEmptyWorkbook
	}

	f := excelize.NewFile()
	defer f.Close()

	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
	}
	names = UniqueSheetNames(names)

	for i, s := range sheets {
		name := names[i]
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return NewCodecError(name, "write", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return NewCodecError(name, "write", err)
		}
		if err := writeRows(f, name, s.Data, opts.InferNumbers); err != nil {
			return NewCodecError(name, "write", err)
		}
		if err := setDimension(f, name, s); err != nil {
			return NewCodecError(name, "write", err)
		}
		if opts.PrintArea {
			if err := setPrintArea(f, name, s.Data); err != nil {
				return NewCodecError(name, "write", err)
			}
		}
	}

	if err := f.Write(w, excelize.Options{Password: opts.Password}); err != nil {
		return NewCodecError("", "write", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheetName string, rows [][]string, inferNumbers bool) error {
	for rowIdx, row := range rows {
		if len(row) == 0 {
			continue
		}
		values := make([]interface{}, len(row))
		for colIdx, cell := range row {
			switch {
			case cell == "":
				values[colIdx] = nil
			case inferNumbers:
				values[colIdx] = parseValue(cell)
			default:
				values[colIdx] = cell
			}
		}
		cellName, err := excelize.CoordinatesToCellName(1, rowIdx+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cellName, &values); err != nil {
			return fmt.Errorf("row %d: %w", rowIdx+1, err)
		}
	}
	return nil
}

// setDimension records the full grid size of s. Empty cells are not stored,
// so the dimension is what carries trailing empty rows and columns.
func setDimension(f *excelize.File, sheetName string, s *models.Sheet) error {
	cols := s.ColumnCount()
	for _, row := range s.Data {
		cols = max(cols, len(row))
	}
	if cols == 0 || s.RowCount() == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(cols, s.RowCount())
	if err != nil {
		return err
	}
	return f.SetSheetDimension(sheetName, "A1:"+end)
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
// Values whose canonical number form differs from the text (leading zeros,
// trailing fraction zeros) stay strings so the visible text is kept.
func parseValue(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(i, 10) == s {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == s {
		return f
	}
	return s
}

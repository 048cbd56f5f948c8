package sheetpm

import (
	"context"

	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/grid"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/models"
)

// editActive applies fn to the active sheet and stamps it modified.
func (s *Store) editActive(ctx context.Context, op string, fn func(sh *models.Sheet) error) error {
	return s.mutate(ctx, op, func(wb *models.Workbook) error {
		sh, ok := wb.Sheets[wb.CurrentSheetID]
		if !ok {
			return ErrNoActiveSheet
		}
		if err := fn(sh); err != nil {
			return err
		}
		grid.Touch(sh, s.opts.now())
		return nil
	})
}

// UpdateCell sets the value at (row, col) of the active sheet.
func (s *Store) UpdateCell(ctx context.Context, row, col int, value string) error {
	return s.editActive(ctx, "update cell", func(sh *models.Sheet) error {
		return grid.SetCell(sh, row, col, value)
	})
}

// UpdateColumnName renames column col of the active sheet.
func (s *Store) UpdateColumnName(ctx context.Context, col int, name string) error {
	return s.editActive(ctx, "update column name", func(sh *models.Sheet) error {
		return grid.RenameColumn(sh, col, name)
	})
}

// AddRow appends an empty row to the active sheet.
func (s *Store) AddRow(ctx context.Context) error {
	return s.editActive(ctx, "add row", func(sh *models.Sheet) error {
		grid.AppendRow(sh)
		return nil
	})
}

// AddRowAt inserts an empty row right after row index of the active sheet.
func (s *Store) AddRowAt(ctx context.Context, index int) error {
	return s.editActive(ctx, "add row", func(sh *models.Sheet) error {
		return grid.InsertRowAfter(sh, index)
	})
}

// AddColumn appends a column to the active sheet.
func (s *Store) AddColumn(ctx context.Context) error {
	return s.editActive(ctx, "add column", func(sh *models.Sheet) error {
		grid.AppendColumn(sh)
		return nil
	})
}

// DeleteRow removes row index from the active sheet.
func (s *Store) DeleteRow(ctx context.Context, index int) error {
	return s.editActive(ctx, "delete row", func(sh *models.Sheet) error {
		return grid.DeleteRow(sh, index)
	})
}

// DeleteColumn removes column index, and its cell in every row, from the active sheet.
func (s *Store) DeleteColumn(ctx context.Context, index int) error {
	return s.editActive(ctx, "delete column", func(sh *models.Sheet) error {
		return grid.DeleteColumn(sh, index)
	})
}

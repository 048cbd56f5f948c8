package sheetpm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/grid"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/models"
)

// CreateSheet adds a columns×rows sheet of empty cells and returns its id.
// The new sheet becomes active only when no sheet was active before.
func (s *Store) CreateSheet(ctx context.Context, name string, columns, rows int) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrInvalidName
	}
	if columns < 0 || rows < 0 {
		return "", fmt.Errorf("invalid sheet size %dx%d", columns, rows)
	}
	var id string
	err := s.mutate(ctx, "create sheet", func(wb *models.Workbook) error {
		id = s.opts.newID()
		wb.Sheets[id] = grid.NewSheet(id, name, columns, rows, s.opts.now())
		wb.Order = append(wb.Order, id)
		if wb.CurrentSheetID == "" {
			wb.CurrentSheetID = id
		}
		return nil
	})
	return id, err
}

// CreateSheetDefault adds a sheet of DefaultColumns×DefaultRows.
func (s *Store) CreateSheetDefault(ctx context.Context, name string) (string, error) {
	return s.CreateSheet(ctx, name, DefaultColumns, DefaultRows)
}

// DeleteSheet removes a sheet. The last remaining sheet cannot be deleted.
// When the active sheet is removed, the first remaining sheet in display
// order becomes active.
func (s *Store) DeleteSheet(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete sheet", func(wb *models.Workbook) error {
		if _, ok := wb.Sheets[id]; !ok {
			return fmt.Errorf("%w: %s", ErrSheetNotFound, id)
		}
		if len(wb.Sheets) <= 1 {
			return ErrLastSheet
		}
		delete(wb.Sheets, id)
		wb.Order = removeID(wb.Order, id)
		if wb.CurrentSheetID == id {
			wb.CurrentSheetID = wb.Order[0]
		}
		return nil
	})
}

// RenameSheet changes the display name of a sheet.
func (s *Store) RenameSheet(ctx context.Context, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	return s.mutate(ctx, "rename sheet", func(wb *models.Workbook) error {
		sh, ok := wb.Sheets[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrSheetNotFound, id)
		}
		sh.Name = name
		grid.Touch(sh, s.opts.now())
		return nil
	})
}

// SwitchSheet makes id the active sheet.
func (s *Store) SwitchSheet(ctx context.Context, id string) error {
	return s.mutate(ctx, "switch sheet", func(wb *models.Workbook) error {
		if _, ok := wb.Sheets[id]; !ok {
			return fmt.Errorf("%w: %s", ErrSheetNotFound, id)
		}
		wb.CurrentSheetID = id
		return nil
	})
}

// DuplicateSheet deep-copies a sheet under a new id and a " (Copy)" name,
// places it right after the original and returns the new id. The copy is
// not activated.
func (s *Store) DuplicateSheet(ctx context.Context, id string) (string, error) {
	var newID string
	err := s.mutate(ctx, "duplicate sheet", func(wb *models.Workbook) error {
		src, ok := wb.Sheets[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrSheetNotFound, id)
		}
		now := s.opts.now()
		dup := grid.Clone(src)
		newID = s.opts.newID()
		dup.ID = newID
		dup.Name = src.Name + CopySuffix
		dup.CreatedAt = now
		dup.LastModified = now
		wb.Sheets[newID] = dup
		wb.Order = insertAfter(wb.Order, id, newID)
		return nil
	})
	return newID, err
}

func removeID(order []string, id string) []string {
	out := order[:0]
	for _, v := range order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func insertAfter(order []string, after, id string) []string {
	for i, v := range order {
		if v == after {
			order = append(order, "")
			copy(order[i+2:], order[i+1:])
			order[i+1] = id
			return order
		}
	}
	return append(order, id)
}

// RenameWorkbook changes the workbook name used for export file names.
func (s *Store) RenameWorkbook(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	return s.mutate(ctx, "rename workbook", func(wb *models.Workbook) error {
		wb.Name = name
		return nil
	})
}

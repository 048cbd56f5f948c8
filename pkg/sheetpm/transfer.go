package sheetpm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/codec"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/grid"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/models"
)

// ImportFile replaces every sheet with the sheets of the xlsx container read
// from r and activates the first one. The input is read and parsed in full
// before the workbook is touched; on any failure the workbook is unchanged.
// It returns the number of imported sheets.
func (s *Store) ImportFile(ctx context.Context, r io.Reader) (int, error) {
	tables, err := codec.Import(r, s.opts.codec)
	if err != nil {
		s.opts.logger.Warn(ctx, "import rejected", "error", err)
		return 0, fmt.Errorf("import: %w", err)
	}

	now := s.opts.now()
	sheets := make(map[string]*models.Sheet, len(tables))
	order := make([]string, 0, len(tables))
	for _, t := range tables {
		id := s.opts.newID()
		sheets[id] = codec.ToSheet(t, id, now)
		order = append(order, id)
	}

	err = s.mutate(ctx, "import", func(wb *models.Workbook) error {
		wb.Sheets = sheets
		wb.Order = order
		wb.CurrentSheetID = order[0]
		return nil
	})
	if err != nil {
		s.opts.logger.Warn(ctx, "workbook imported but not persisted", "sheets", len(tables), "error", err)
		return len(tables), err
	}
	s.opts.logger.Info(ctx, "workbook imported", "sheets", len(tables))
	return len(tables), nil
}

// ExportFile writes every sheet, in display order, as an xlsx container to w.
func (s *Store) ExportFile(ctx context.Context, w io.Writer) error {
	s.mu.Lock()
	sheets := orderedSheets(s.wb)
	for i, sh := range sheets {
		sheets[i] = grid.Clone(sh)
	}
	s.mu.Unlock()

	if err := codec.Export(w, sheets, s.opts.codec); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	s.opts.logger.Debug(ctx, "workbook exported", "sheets", len(sheets))
	return nil
}

// ExportFileName returns the suggested download name, "<workbook name>.xlsx".
func (s *Store) ExportFileName() string {
	s.mu.Lock()
	name := strings.TrimSpace(s.wb.Name)
	s.mu.Unlock()
	if name == "" {
		name = "Project_Workbook"
	}
	return name + ".xlsx"
}

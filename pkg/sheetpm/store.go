package sheetpm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/grid"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/models"
)

// BlobStore is the persistence boundary: one logical key holding the whole
// serialized workbook.
type BlobStore interface {
	// Load returns the saved blob, or ErrBlobNotFound if nothing was saved.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the saved blob.
	Save(ctx context.Context, data []byte) error
}

// Store owns the active workbook and routes every mutation through a single
// persist path. Saves are last-writer-wins; nothing coordinates two
// processes sharing one BlobStore.
type Store struct {
	mu    sync.Mutex
	blobs BlobStore
	wb    *models.Workbook
	opts  *options
}

// New creates a Store backed by blobs and loads the saved workbook.
func New(ctx context.Context, blobs BlobStore, opts ...Option) *Store {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	s := &Store{blobs: blobs, opts: o}
	s.Load(ctx)
	return s
}

// Load replaces the in-memory workbook with the saved one. A missing,
// unreadable or malformed blob yields a fresh empty workbook; Load never fails.
func (s *Store) Load(ctx context.Context) models.Workbook {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wb = s.loadWorkbook(ctx)
	return cloneWorkbook(s.wb)
}

func (s *Store) loadWorkbook(ctx context.Context) *models.Workbook {
	log := s.opts.logger
	data, err := s.blobs.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			log.Warn(ctx, "workbook load failed, starting empty", "error", err)
		}
		return s.freshWorkbook()
	}

	wb, err := decodeWorkbook(data)
	if err != nil {
		log.Warn(ctx, "saved workbook is malformed, starting empty", "error", err)
		return s.freshWorkbook()
	}
	if repairWorkbook(wb) {
		log.Warn(ctx, "saved workbook repaired", "sheets", len(wb.Sheets))
	}
	log.Debug(ctx, "workbook loaded", "sheets", len(wb.Sheets), "current", wb.CurrentSheetID)
	return wb
}

func (s *Store) freshWorkbook() *models.Workbook {
	now := s.opts.now()
	return &models.Workbook{
		ID:           DefaultWorkbookID,
		Name:         DefaultWorkbookName,
		Sheets:       make(map[string]*models.Sheet),
		CreatedAt:    now,
		LastModified: now,
	}
}

var errSheetsNotMapping = errors.New("sheets is not a mapping")

// decodeWorkbook parses a blob, rejecting documents whose sheets field is
// absent or not a JSON object.
func decodeWorkbook(data []byte) (*models.Workbook, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	raw := bytes.TrimSpace(fields["sheets"])
	if len(raw) == 0 || raw[0] != '{' {
		return nil, errSheetsNotMapping
	}
	var wb models.Workbook
	if err := json.Unmarshal(data, &wb); err != nil {
		return nil, err
	}
	return &wb, nil
}

// repairWorkbook restores the structural invariants of a decoded workbook:
// rectangular sheets, keys matching ids, a complete display order and a
// current sheet that exists. It reports whether anything changed.
func repairWorkbook(wb *models.Workbook) bool {
	changed := false
	for id, sh := range wb.Sheets {
		if sh == nil {
			delete(wb.Sheets, id)
			changed = true
			continue
		}
		if sh.ID != id {
			sh.ID = id
			changed = true
		}
		if grid.Normalize(sh) {
			changed = true
		}
	}
	if repairOrder(wb) {
		changed = true
	}
	if _, ok := wb.Sheets[wb.CurrentSheetID]; !ok {
		next := ""
		if len(wb.Order) > 0 {
			next = wb.Order[0]
		}
		if next != wb.CurrentSheetID {
			wb.CurrentSheetID = next
			changed = true
		}
	}
	return changed
}

// repairOrder drops unknown or repeated ids from Order and appends sheets
// missing from it, oldest first.
func repairOrder(wb *models.Workbook) bool {
	seen := make(map[string]bool, len(wb.Sheets))
	order := make([]string, 0, len(wb.Sheets))
	for _, id := range wb.Order {
		if _, ok := wb.Sheets[id]; ok && !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	var missing []*models.Sheet
	for id, sh := range wb.Sheets {
		if !seen[id] {
			missing = append(missing, sh)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		if !missing[i].CreatedAt.Equal(missing[j].CreatedAt) {
			return missing[i].CreatedAt.Before(missing[j].CreatedAt)
		}
		return missing[i].ID < missing[j].ID
	})
	for _, sh := range missing {
		order = append(order, sh.ID)
	}
	changed := len(order) != len(wb.Order)
	for i := range order {
		if !changed && order[i] != wb.Order[i] {
			changed = true
		}
	}
	wb.Order = order
	return changed
}

// persist stamps the workbook and writes it as one blob.
func (s *Store) persist(ctx context.Context, op string) error {
	s.wb.LastModified = s.opts.now()
	data, err := json.Marshal(s.wb)
	if err != nil {
		return &PersistError{Op: op, Err: err}
	}
	if err := s.blobs.Save(ctx, data); err != nil {
		s.opts.logger.Error(ctx, "workbook save failed", "op", op, "error", err)
		return &PersistError{Op: op, Err: err}
	}
	s.opts.logger.Debug(ctx, "workbook saved", "op", op, "bytes", len(data))
	return nil
}

// mutate runs fn under the lock, persists on success and notifies observers.
// When fn fails nothing is persisted and the workbook is left as fn left it;
// every fn validates before touching state.
func (s *Store) mutate(ctx context.Context, op string, fn func(wb *models.Workbook) error) error {
	s.mu.Lock()
	if err := fn(s.wb); err != nil {
		s.mu.Unlock()
		return err
	}
	err := s.persist(ctx, op)
	var snapshot models.Workbook
	if len(s.opts.observers) > 0 {
		snapshot = cloneWorkbook(s.wb)
	}
	s.mu.Unlock()

	for _, obs := range s.opts.observers {
		obs(snapshot)
	}
	return err
}

// Workbook returns a deep copy of the current workbook.
func (s *Store) Workbook() models.Workbook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneWorkbook(s.wb)
}

// ActiveSheet returns a copy of the active sheet.
func (s *Store) ActiveSheet() (*models.Sheet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.wb.Sheets[s.wb.CurrentSheetID]
	if !ok {
		return nil, false
	}
	return grid.Clone(sh), true
}

// Sheet returns a copy of the sheet with the given id.
func (s *Store) Sheet(id string) (*models.Sheet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.wb.Sheets[id]
	if !ok {
		return nil, false
	}
	return grid.Clone(sh), true
}

// CurrentSheetID returns the active sheet id, "" when there is none.
func (s *Store) CurrentSheetID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wb.CurrentSheetID
}

// Sheets lists every sheet in display order.
func (s *Store) Sheets() []models.SheetSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SheetSummary, 0, len(s.wb.Order))
	for _, id := range s.wb.Order {
		sh := s.wb.Sheets[id]
		out = append(out, models.SheetSummary{
			ID:           sh.ID,
			Name:         sh.Name,
			Rows:         sh.RowCount(),
			Columns:      sh.ColumnCount(),
			Active:       id == s.wb.CurrentSheetID,
			LastModified: sh.LastModified,
		})
	}
	return out
}

// orderedSheets returns the workbook's sheets in display order.
func orderedSheets(wb *models.Workbook) []*models.Sheet {
	out := make([]*models.Sheet, 0, len(wb.Order))
	for _, id := range wb.Order {
		out = append(out, wb.Sheets[id])
	}
	return out
}

func cloneWorkbook(wb *models.Workbook) models.Workbook {
	out := *wb
	out.Sheets = make(map[string]*models.Sheet, len(wb.Sheets))
	for id, sh := range wb.Sheets {
		out.Sheets[id] = grid.Clone(sh)
	}
	out.Order = append([]string(nil), wb.Order...)
	return out
}

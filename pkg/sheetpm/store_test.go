package sheetpm_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/sheetpm-go/internal/logging"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/blob"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/codec"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/grid"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/models"
)

// fixedClock returns a clock that advances one second per call.
func fixedClock() func() time.Time {
	t := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

// seqIDs returns an id generator yielding sheet-1, sheet-2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("sheet-%d", n)
	}
}

func newTestStore(t *testing.T, opts ...sheetpm.Option) (*sheetpm.Store, *blob.MemoryStore) {
	t.Helper()
	blobs := blob.NewMemoryStore()
	opts = append([]sheetpm.Option{sheetpm.WithClock(fixedClock()), sheetpm.WithIDGenerator(seqIDs())}, opts...)
	return sheetpm.New(context.Background(), blobs, opts...), blobs
}

type failingBlobs struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingBlobs) Load(ctx context.Context) ([]byte, error) { return nil, f.loadErr }
func (f *failingBlobs) Save(ctx context.Context, data []byte) error {
	f.saves++
	return f.saveErr
}

func TestLoad_MissingBlob(t *testing.T) {
	st, _ := newTestStore(t)
	wb := st.Workbook()
	assert.Equal(t, sheetpm.DefaultWorkbookID, wb.ID)
	assert.Equal(t, sheetpm.DefaultWorkbookName, wb.Name)
	assert.Empty(t, wb.Sheets)
	assert.NotNil(t, wb.Sheets)
	assert.Empty(t, wb.CurrentSheetID)
}

func TestLoad_CorruptBlobsFailOpen(t *testing.T) {
	blobs := []string{
		"",
		"{oops",
		"null",
		"[]",
		`{"id":"w","sheets":[]}`,
		`{"id":"w","sheets":"nope"}`,
		`{"id":"w","sheets":null}`,
		`{"id":"w"}`,
		`{"id":"w","sheets":{"a":{"data":"bad"}}}`,
	}
	for _, raw := range blobs {
		st := sheetpm.New(context.Background(), blob.NewMemoryStoreWith([]byte(raw)))
		wb := st.Workbook()
		assert.Empty(t, wb.Sheets, "blob %q", raw)
		assert.Empty(t, wb.CurrentSheetID, "blob %q", raw)
	}
}

func TestLoad_StorageErrorFailsOpen(t *testing.T) {
	st := sheetpm.New(context.Background(), &failingBlobs{loadErr: errors.New("disk on fire")})
	assert.Empty(t, st.Workbook().Sheets)
}

func TestLoad_RepairsRaggedAndDanglingState(t *testing.T) {
	raw := `{
		"id": "workbook_1",
		"name": "Legacy",
		"currentSheetId": "gone",
		"sheets": {
			"s1": {"id": "s1", "name": "Tasks",
			       "columns": [{"id": "col_0", "name": "A", "width": 120}],
			       "data": [["a", "b"], []],
			       "createdAt": "2026-01-01T00:00:00Z"},
			"s0": {"name": "Older", "createdAt": "2025-01-01T00:00:00Z"},
			"nil": null
		}
	}`
	st := sheetpm.New(context.Background(), blob.NewMemoryStoreWith([]byte(raw)))
	wb := st.Workbook()

	require.Len(t, wb.Sheets, 2)
	assert.Equal(t, []string{"s0", "s1"}, wb.Order)
	assert.Equal(t, "s0", wb.CurrentSheetID)
	assert.Equal(t, "s0", wb.Sheets["s0"].ID)

	s1 := wb.Sheets["s1"]
	assert.True(t, grid.IsRectangular(s1))
	assert.Equal(t, [][]string{{"a", "b"}, {"", ""}}, s1.Data)
}

func TestCreateSheet(t *testing.T) {
	ctx := context.Background()
	st, blobs := newTestStore(t)

	first, err := st.CreateSheetDefault(ctx, "Backlog")
	require.NoError(t, err)
	second, err := st.CreateSheet(ctx, "Sprint", 3, 2)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// Only the first sheet is activated automatically.
	assert.Equal(t, first, st.CurrentSheetID())

	sh, ok := st.Sheet(first)
	require.True(t, ok)
	assert.Equal(t, sheetpm.DefaultColumns, sh.ColumnCount())
	assert.Equal(t, sheetpm.DefaultRows, sh.RowCount())

	sh, ok = st.Sheet(second)
	require.True(t, ok)
	assert.Equal(t, 3, sh.ColumnCount())
	assert.Equal(t, 2, sh.RowCount())

	// Every mutation persisted.
	reloaded := sheetpm.New(ctx, blobs)
	assert.Len(t, reloaded.Workbook().Sheets, 2)
	assert.Equal(t, first, reloaded.CurrentSheetID())
}

func TestCreateSheet_InvalidInput(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	_, err := st.CreateSheet(ctx, "  ", 1, 1)
	assert.ErrorIs(t, err, sheetpm.ErrInvalidName)
	_, err = st.CreateSheet(ctx, "x", -1, 1)
	assert.Error(t, err)
	assert.Empty(t, st.Workbook().Sheets)
}

func TestDeleteSheet_LastSheetRejected(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	id, err := st.CreateSheetDefault(ctx, "Only")
	require.NoError(t, err)

	assert.ErrorIs(t, st.DeleteSheet(ctx, id), sheetpm.ErrLastSheet)
	assert.Len(t, st.Workbook().Sheets, 1)
	assert.Equal(t, id, st.CurrentSheetID())
}

func TestDeleteSheet_ActiveMovesToRemaining(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	a, _ := st.CreateSheetDefault(ctx, "A")
	b, _ := st.CreateSheetDefault(ctx, "B")
	c, _ := st.CreateSheetDefault(ctx, "C")

	require.NoError(t, st.DeleteSheet(ctx, a))
	cur := st.CurrentSheetID()
	assert.Contains(t, []string{b, c}, cur)
	assert.Equal(t, b, cur, "first remaining sheet in display order")

	require.NoError(t, st.DeleteSheet(ctx, c))
	assert.Equal(t, b, st.CurrentSheetID())
	assert.ErrorIs(t, st.DeleteSheet(ctx, c), sheetpm.ErrSheetNotFound)
}

func TestRenameSheet(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	id, _ := st.CreateSheetDefault(ctx, "Old")
	before, _ := st.Sheet(id)

	require.NoError(t, st.RenameSheet(ctx, id, "New"))
	after, _ := st.Sheet(id)
	assert.Equal(t, "New", after.Name)
	assert.True(t, after.LastModified.After(before.LastModified))

	assert.ErrorIs(t, st.RenameSheet(ctx, "missing", "x"), sheetpm.ErrSheetNotFound)
	assert.ErrorIs(t, st.RenameSheet(ctx, id, ""), sheetpm.ErrInvalidName)
}

func TestSwitchSheet(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	a, _ := st.CreateSheetDefault(ctx, "A")
	b, _ := st.CreateSheetDefault(ctx, "B")

	require.NoError(t, st.SwitchSheet(ctx, b))
	assert.Equal(t, b, st.CurrentSheetID())

	assert.ErrorIs(t, st.SwitchSheet(ctx, "nope"), sheetpm.ErrSheetNotFound)
	assert.Equal(t, b, st.CurrentSheetID())
	_ = a
}

func TestDuplicateSheet_IsDeepCopy(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	orig, _ := st.CreateSheet(ctx, "Plan", 2, 2)
	other, _ := st.CreateSheetDefault(ctx, "Other")
	require.NoError(t, st.UpdateCell(ctx, 0, 1, "keep"))
	require.NoError(t, st.UpdateColumnName(ctx, 0, "Owner"))

	dup, err := st.DuplicateSheet(ctx, orig)
	require.NoError(t, err)
	assert.NotEqual(t, orig, dup)
	assert.Equal(t, orig, st.CurrentSheetID(), "duplicate is not activated")

	o, _ := st.Sheet(orig)
	d, _ := st.Sheet(dup)
	assert.Equal(t, "Plan (Copy)", d.Name)
	assert.Equal(t, o.Columns, d.Columns)
	assert.Equal(t, o.Data, d.Data)

	// Display order places the copy after its source.
	var ids []string
	for _, s := range st.Sheets() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{orig, dup, other}, ids)

	// Editing the copy leaves the original alone.
	require.NoError(t, st.SwitchSheet(ctx, dup))
	require.NoError(t, st.UpdateCell(ctx, 0, 1, "changed"))
	require.NoError(t, st.AddColumn(ctx))
	o, _ = st.Sheet(orig)
	assert.Equal(t, "keep", o.Data[0][1])
	assert.Equal(t, 2, o.ColumnCount())

	_, err = st.DuplicateSheet(ctx, "missing")
	assert.ErrorIs(t, err, sheetpm.ErrSheetNotFound)
}

func TestCellEdits_NoActiveSheet(t *testing.T) {
	ctx := context.Background()
	st, blobs := newTestStore(t)

	assert.ErrorIs(t, st.UpdateCell(ctx, 0, 0, "x"), sheetpm.ErrNoActiveSheet)
	assert.ErrorIs(t, st.UpdateColumnName(ctx, 0, "x"), sheetpm.ErrNoActiveSheet)
	assert.ErrorIs(t, st.AddRow(ctx), sheetpm.ErrNoActiveSheet)
	assert.ErrorIs(t, st.AddRowAt(ctx, 0), sheetpm.ErrNoActiveSheet)
	assert.ErrorIs(t, st.AddColumn(ctx), sheetpm.ErrNoActiveSheet)
	assert.ErrorIs(t, st.DeleteRow(ctx, 0), sheetpm.ErrNoActiveSheet)
	assert.ErrorIs(t, st.DeleteColumn(ctx, 0), sheetpm.ErrNoActiveSheet)

	_, err := blobs.Load(ctx)
	assert.ErrorIs(t, err, sheetpm.ErrBlobNotFound, "rejected edits are not persisted")
}

func TestCellEdits_ActiveSheet(t *testing.T) {
	ctx := context.Background()
	st, blobs := newTestStore(t)
	_, err := st.CreateSheet(ctx, "Tasks", 2, 1)
	require.NoError(t, err)

	require.NoError(t, st.UpdateCell(ctx, 0, 0, "design"))
	require.NoError(t, st.AddRow(ctx))
	require.NoError(t, st.AddRowAt(ctx, -1))
	require.NoError(t, st.AddColumn(ctx))
	require.NoError(t, st.UpdateColumnName(ctx, 2, "Status"))
	require.NoError(t, st.UpdateCell(ctx, 1, 2, "open"))
	assert.ErrorIs(t, st.UpdateCell(ctx, 9, 0, "x"), grid.ErrOutOfRange)

	sh, ok := st.ActiveSheet()
	require.True(t, ok)
	assert.Equal(t, [][]string{{"", "", ""}, {"design", "", "open"}, {"", "", ""}}, sh.Data)
	assert.Equal(t, "Status", sh.Columns[2].Name)
	assert.True(t, grid.IsRectangular(sh))

	require.NoError(t, st.DeleteColumn(ctx, 1))
	require.NoError(t, st.DeleteRow(ctx, 0))
	sh, _ = st.ActiveSheet()
	assert.Equal(t, [][]string{{"design", "open"}, {"", ""}}, sh.Data)

	reloaded := sheetpm.New(ctx, blobs)
	rsh, ok := reloaded.ActiveSheet()
	require.True(t, ok)
	assert.Equal(t, sh.Data, rsh.Data)
	assert.Equal(t, sh.Columns, rsh.Columns)
}

func TestAccessorsReturnCopies(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	id, _ := st.CreateSheet(ctx, "Tasks", 1, 1)

	sh, _ := st.ActiveSheet()
	sh.Data[0][0] = "mutated"
	wb := st.Workbook()
	wb.Sheets[id].Name = "mutated"

	fresh, _ := st.Sheet(id)
	assert.Equal(t, "", fresh.Data[0][0])
	assert.Equal(t, "Tasks", fresh.Name)
}

func TestSheets_Summary(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	a, _ := st.CreateSheet(ctx, "A", 2, 3)
	b, _ := st.CreateSheet(ctx, "B", 4, 1)

	list := st.Sheets()
	require.Len(t, list, 2)
	assert.Equal(t, models.SheetSummary{ID: a, Name: "A", Rows: 3, Columns: 2, Active: true, LastModified: list[0].LastModified}, list[0])
	assert.Equal(t, b, list[1].ID)
	assert.False(t, list[1].Active)
}

func TestObserver(t *testing.T) {
	ctx := context.Background()
	var seen []int
	var st *sheetpm.Store
	st, _ = newTestStore(t, sheetpm.WithObserver(func(wb models.Workbook) {
		seen = append(seen, len(wb.Sheets))
		// Observers run outside the lock.
		_ = st.Sheets()
	}))

	_, _ = st.CreateSheetDefault(ctx, "A")
	_, _ = st.CreateSheetDefault(ctx, "B")
	_ = st.SwitchSheet(ctx, "missing")

	assert.Equal(t, []int{1, 2}, seen)
}

func TestPersistFailure(t *testing.T) {
	ctx := context.Background()
	blobs := &failingBlobs{loadErr: sheetpm.ErrBlobNotFound, saveErr: errors.New("quota exceeded")}
	st := sheetpm.New(ctx, blobs)

	id, err := st.CreateSheetDefault(ctx, "A")
	var perr *sheetpm.PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "create sheet", perr.Op)
	assert.EqualError(t, perr, "persist workbook after create sheet: quota exceeded")

	// Last writer wins: the edit stays applied in memory.
	assert.Equal(t, id, st.CurrentSheetID())
	assert.Equal(t, 1, blobs.saves)
}

func TestWorkbookLastModifiedStamped(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	before := st.Workbook().LastModified
	_, _ = st.CreateSheetDefault(ctx, "A")
	assert.True(t, st.Workbook().LastModified.After(before))
}

func TestRenameWorkbook(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	assert.Equal(t, "Project Workbook.xlsx", st.ExportFileName())

	require.NoError(t, st.RenameWorkbook(ctx, "Q4 Roadmap"))
	assert.Equal(t, "Q4 Roadmap", st.Workbook().Name)
	assert.Equal(t, "Q4 Roadmap.xlsx", st.ExportFileName())
	assert.ErrorIs(t, st.RenameWorkbook(ctx, " "), sheetpm.ErrInvalidName)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestStore(t)
	_, _ = src.CreateSheet(ctx, "Tasks", 2, 2)
	_, _ = src.CreateSheet(ctx, "Risks", 1, 1)
	require.NoError(t, src.UpdateCell(ctx, 0, 0, "design"))
	require.NoError(t, src.UpdateCell(ctx, 1, 1, "42"))

	var buf bytes.Buffer
	require.NoError(t, src.ExportFile(ctx, &buf))

	dst, blobs := newTestStore(t)
	_, _ = dst.CreateSheetDefault(ctx, "Scratch")
	n, err := dst.ImportFile(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list := dst.Sheets()
	require.Len(t, list, 2)
	assert.Equal(t, "Tasks", list[0].Name)
	assert.Equal(t, "Risks", list[1].Name)
	assert.True(t, list[0].Active)

	sh, ok := dst.ActiveSheet()
	require.True(t, ok)
	assert.Equal(t, [][]string{{"design", ""}, {"", "42"}}, sh.Data)
	assert.Equal(t, "A", sh.Columns[0].Name)

	reloaded := sheetpm.New(ctx, blobs)
	assert.Len(t, reloaded.Workbook().Sheets, 2)
}

func TestExportImportRoundTrip_DefaultSizeSheet(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestStore(t)
	_, err := src.CreateSheetDefault(ctx, "Backlog")
	require.NoError(t, err)
	require.NoError(t, src.UpdateCell(ctx, 0, 0, "x"))
	_, err = src.CreateSheetDefault(ctx, "Blank")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.ExportFile(ctx, &buf))

	dst, _ := newTestStore(t)
	_, err = dst.ImportFile(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	list := dst.Sheets()
	require.Len(t, list, 2)
	for _, sum := range list {
		assert.Equal(t, sheetpm.DefaultRows, sum.Rows, sum.Name)
		assert.Equal(t, sheetpm.DefaultColumns, sum.Columns, sum.Name)
	}

	sh, ok := dst.ActiveSheet()
	require.True(t, ok)
	_, want := grid.CreateEmpty(sheetpm.DefaultColumns, sheetpm.DefaultRows)
	want[0][0] = "x"
	assert.Equal(t, want, sh.Data)
}

func TestImportFile_PersistFailureLogsWarning(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestStore(t)
	_, _ = src.CreateSheet(ctx, "Tasks", 1, 1)
	var buf bytes.Buffer
	require.NoError(t, src.ExportFile(ctx, &buf))

	var logs bytes.Buffer
	logger, err := logging.NewWithWriter("json", "INFO", &logs)
	require.NoError(t, err)
	blobs := &failingBlobs{loadErr: sheetpm.ErrBlobNotFound, saveErr: errors.New("quota exceeded")}
	st := sheetpm.New(ctx, blobs, sheetpm.WithLogger(logger))

	n, err := st.ImportFile(ctx, bytes.NewReader(buf.Bytes()))
	var perr *sheetpm.PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "import", perr.Op)
	assert.Equal(t, 1, n)

	assert.Contains(t, logs.String(), `"level":"WARN","msg":"workbook imported but not persisted"`)
	assert.NotContains(t, logs.String(), `"msg":"workbook imported",`)
}

func TestImportFile_InvalidLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)
	id, _ := st.CreateSheet(ctx, "Keep", 1, 1)
	require.NoError(t, st.UpdateCell(ctx, 0, 0, "safe"))
	before := st.Workbook()

	_, err := st.ImportFile(ctx, bytes.NewReader([]byte("not a zip container")))
	assert.ErrorIs(t, err, codec.ErrInvalidFormat)

	after := st.Workbook()
	assert.Equal(t, before, after)
	assert.Equal(t, id, st.CurrentSheetID())
}

func TestExportFile_EmptyWorkbook(t *testing.T) {
	st, _ := newTestStore(t)
	var buf bytes.Buffer
	assert.ErrorIs(t, st.ExportFile(context.Background(), &buf), codec.ErrEmptyWorkbook)
}

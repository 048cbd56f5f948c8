package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	_, err := m.Load(ctx)
	assert.ErrorIs(t, err, sheetpm.ErrBlobNotFound)

	buf := []byte("first")
	require.NoError(t, m.Save(ctx, buf))
	buf[0] = 'X'

	data, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "workbook.json")
	f := NewFileStore(path)

	_, err := f.Load(ctx)
	assert.ErrorIs(t, err, sheetpm.ErrBlobNotFound)

	require.NoError(t, f.Save(ctx, []byte(`{"a":1}`)))
	require.NoError(t, f.Save(ctx, []byte(`{"a":2}`)))

	data, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStore_CorruptBlobFailsOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "workbook.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	st := sheetpm.New(ctx, NewFileStore(path))
	wb := st.Workbook()
	assert.Empty(t, wb.Sheets)
	assert.Empty(t, wb.CurrentSheetID)
}

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/sheetpm-go/internal/config"
	"github.com/ukaji3/sheetpm-go/internal/logging"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/blob/rdb"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/remote"
)

func init() {
	color.NoColor = true
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.StoreEnvKey, "")
	t.Setenv(config.TokenEnvKey, "")
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config-dir", dir, "--log-level", "ERROR"}, args...))
	_, err := execute(context.Background(), root)
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	require.NoError(t, err, "sheetpm %v", args)
	return out
}

func TestCLI_SheetLifecycle(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "sheet", "list")
	assert.Contains(t, out, "No sheets")

	out = mustRun(t, dir, "sheet", "create", "Tasks", "--columns", "2", "--rows", "2")
	assert.Contains(t, out, "Created sheet Tasks")

	mustRun(t, dir, "cell", "set", "B2", "done")
	mustRun(t, dir, "column", "rename", "B", "Status")
	mustRun(t, dir, "row", "add")
	mustRun(t, dir, "column", "add")

	out = mustRun(t, dir, "sheet", "show")
	assert.Contains(t, out, "Status")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "used range B2:B2, 1 non-empty cells")

	mustRun(t, dir, "sheet", "duplicate", "Tasks")
	out = mustRun(t, dir, "sheet", "list")
	assert.Contains(t, out, "Tasks (Copy)")
	assert.Contains(t, out, "3x3")

	mustRun(t, dir, "sheet", "switch", "Tasks (Copy)")
	mustRun(t, dir, "sheet", "delete", "Tasks")
	_, err := run(t, dir, "sheet", "delete", "Tasks (Copy)")
	assert.ErrorIs(t, err, sheetpm.ErrLastSheet)

	_, err = run(t, dir, "sheet", "switch", "nope")
	assert.ErrorIs(t, err, sheetpm.ErrSheetNotFound)

	_, err = os.Stat(filepath.Join(dir, config.BlobFileName))
	assert.NoError(t, err)
}

func TestCLI_ExportImport(t *testing.T) {
	src := t.TempDir()
	mustRun(t, src, "workbook", "rename", "Roadmap")
	mustRun(t, src, "sheet", "create", "Q1", "--columns", "2", "--rows", "1")
	mustRun(t, src, "cell", "set", "A1", "kickoff")

	path := filepath.Join(t.TempDir(), "out.xlsx")
	out := mustRun(t, src, "export", path, "--print-area")
	assert.Contains(t, out, "Exported 1 sheet(s)")

	dst := t.TempDir()
	mustRun(t, dst, "sheet", "create", "Old")
	out = mustRun(t, dst, "import", path)
	assert.Contains(t, out, "Imported 1 sheet(s)")

	out = mustRun(t, dst, "sheet", "list")
	assert.Contains(t, out, "Q1")
	assert.NotContains(t, out, "Old")
	assert.Contains(t, mustRun(t, dst, "sheet", "show"), "kickoff")

	_, err := run(t, dst, "import", filepath.Join(dst, "missing.xlsx"))
	assert.Error(t, err)
}

func TestCLI_SQLiteStore(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "--store", "sqlite", "sheet", "create", "Persisted")
	out := mustRun(t, dir, "--store", "sqlite", "sheet", "list")
	assert.Contains(t, out, "Persisted")

	_, err := os.Stat(filepath.Join(dir, config.DBFileName))
	assert.NoError(t, err)

	out = mustRun(t, dir, "sheet", "list")
	assert.Contains(t, out, "No sheets", "file store is independent")
}

func TestCLI_InvalidStore(t *testing.T) {
	for _, store := range []string{"s3", "memory"} {
		_, err := run(t, t.TempDir(), "--store", store, "sheet", "list")
		assert.ErrorContains(t, err, "unsupported store type", store)
	}
}

func TestApp_ClosesSQLiteStore(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default(t.TempDir())
	cfg.Store.Type = config.StoreSQLite
	a := &app{cfg: cfg, logger: logging.Discard()}

	st, err := a.openStore(ctx)
	require.NoError(t, err)
	_, err = st.CreateSheetDefault(ctx, "Kept")
	require.NoError(t, err)
	require.Len(t, a.closers, 1)
	db, ok := a.closers[0].(*rdb.Store)
	require.True(t, ok)

	require.NoError(t, a.Close())
	assert.Empty(t, a.closers)
	_, err = db.Load(ctx)
	assert.Error(t, err)

	reopened, err := a.openStore(ctx)
	require.NoError(t, err)
	defer a.Close()
	assert.Len(t, reopened.Sheets(), 1)
}

func TestCLI_RemoteRequiresAuth(t *testing.T) {
	_, err := run(t, t.TempDir(), "remote", "list")
	assert.ErrorIs(t, err, remote.ErrNotAuthenticated)
}

func TestCLI_RemoteCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"spreadsheetId":"s-1","properties":{"title":"Launch"}}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.Remote.AccessToken = "tok"
	cfg.Remote.SheetsURL = srv.URL
	cfg.Remote.DriveURL = srv.URL
	require.NoError(t, cfg.Save())

	out := mustRun(t, dir, "remote", "create", "Launch")
	assert.Contains(t, out, "Created Launch https://docs.google.com/spreadsheets/d/s-1/edit")

	_, err := run(t, dir, "remote", "share", "s-1", "someone", "--role", "writer")
	assert.ErrorIs(t, err, remote.ErrInvalidPrincipal)
}

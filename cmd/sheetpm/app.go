package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetpm-go/internal/config"
	"github.com/ukaji3/sheetpm-go/internal/logging"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/blob"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/blob/rdb"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/models"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/remote"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/remote/drive"
)

// app holds what every subcommand needs, built once in PersistentPreRunE.
type app struct {
	cfg     *config.Config
	logger  logging.Logger
	closers []io.Closer
}

type appKeyType struct{}

var appKey appKeyType

func withApp(ctx context.Context, a *app) context.Context {
	return context.WithValue(ctx, appKey, a)
}

func appFrom(cmd *cobra.Command) (*app, error) {
	a, ok := cmd.Context().Value(appKey).(*app)
	if !ok {
		return nil, fmt.Errorf("command context is not initialized")
	}
	return a, nil
}

// newApp resolves configuration with precedence flag > env > file.
func newApp(cmd *cobra.Command) (*app, error) {
	flagDir, _ := cmd.Flags().GetString("config-dir")
	dir, err := config.ResolveDir(flagDir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store.Type = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Logging.Format = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.NewWithWriter(cfg.Logging.Format, cfg.Logging.Level, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger}, nil
}

// blobStore builds the configured workbook blob store.
func (a *app) blobStore() (sheetpm.BlobStore, error) {
	switch a.cfg.Store.Type {
	case config.StoreFile:
		return blob.NewFileStore(a.cfg.StorePath()), nil
	case config.StoreSQLite:
		db, err := rdb.OpenFromURL("sqlite:" + a.cfg.StorePath())
		if err != nil {
			return nil, err
		}
		if err := rdb.AutoMigrate(db); err != nil {
			_ = rdb.NewStore(db, "").Close()
			return nil, fmt.Errorf("migrating %s: %w", a.cfg.StorePath(), err)
		}
		store := rdb.NewStore(db, a.cfg.Store.Key)
		a.closers = append(a.closers, store)
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store type %q", a.cfg.Store.Type)
	}
}

// Close releases every store opened by the command.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// openStore loads the workbook from the configured blob store.
func (a *app) openStore(ctx context.Context, opts ...sheetpm.Option) (*sheetpm.Store, error) {
	blobs, err := a.blobStore()
	if err != nil {
		return nil, err
	}
	logger := a.logger
	opts = append([]sheetpm.Option{
		sheetpm.WithLogger(logger),
		sheetpm.WithObserver(func(wb models.Workbook) {
			logger.Debug(ctx, "workbook changed", "sheets", len(wb.Sheets), "current", wb.CurrentSheetID)
		}),
	}, opts...)
	return sheetpm.New(ctx, blobs, opts...), nil
}

// registry builds the remote registry over the Drive client.
func (a *app) registry(ctx context.Context) *remote.Registry {
	r := a.cfg.Remote
	var opts []drive.Option
	if r.DriveURL != "" {
		opts = append(opts, drive.WithDriveURL(r.DriveURL))
	}
	if r.SheetsURL != "" {
		opts = append(opts, drive.WithSheetsURL(r.SheetsURL))
	}
	opts = append(opts, drive.WithLogger(a.logger))
	client := drive.New(a.cfg.TokenSource(ctx), opts...)
	return remote.NewRegistry(client, remote.WithLogger(a.logger))
}

// resolveSheet finds a sheet by id, or by a name unique within the workbook.
func resolveSheet(st *sheetpm.Store, ref string) (string, error) {
	if _, ok := st.Sheet(ref); ok {
		return ref, nil
	}
	var matches []string
	for _, s := range st.Sheets() {
		if strings.EqualFold(s.Name, ref) {
			matches = append(matches, s.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", sheetpm.ErrSheetNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("sheet name %q is ambiguous, use the id", ref)
	}
}

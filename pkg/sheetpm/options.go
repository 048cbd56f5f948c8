// Package sheetpm provides the workbook store: the owner of all sheets, the
// single persistence path and the xlsx import/export entry points.
package sheetpm

import (
	"time"

	"github.com/google/uuid"
	"github.com/ukaji3/sheetpm-go/internal/logging"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/codec"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/models"
)

const (
	// DefaultColumns is the column count of a sheet created without explicit size.
	DefaultColumns = 5
	// DefaultRows is the row count of a sheet created without explicit size.
	DefaultRows = 10
	// DefaultWorkbookID is the id of a freshly initialized workbook.
	DefaultWorkbookID = "workbook_1"
	// DefaultWorkbookName is the name of a freshly initialized workbook.
	DefaultWorkbookName = "Project Workbook"
	// CopySuffix is appended to the name of a duplicated sheet.
	CopySuffix = " (Copy)"
)

// Observer is called with a snapshot of the workbook after every successful mutation.
type Observer func(models.Workbook)

type options struct {
	logger    logging.Logger
	now       func() time.Time
	newID     func() string
	observers []Observer
	codec     codec.Options
}

func defaultOptions() *options {
	return &options{
		logger: logging.Discard(),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Option configures a Store.
type Option func(*options)

// WithLogger sets the logger used for load and persist diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the time source (default: time.Now in UTC).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides the sheet id generator (default: random UUIDs).
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// WithObserver registers a change observer. Observers run after the store
// lock is released, so they may call read accessors.
func WithObserver(fn Observer) Option {
	return func(o *options) { o.observers = append(o.observers, fn) }
}

// WithCodecOptions sets the options used by ImportFile and ExportFile.
func WithCodecOptions(c codec.Options) Option {
	return func(o *options) { o.codec = c }
}

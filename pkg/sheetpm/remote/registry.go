// Package remote tracks spreadsheet documents that live in a remote document
// service. The records are independent of the local workbook.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"sync"

	"github.com/ukaji3/sheetpm-go/internal/logging"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/models"
)

// DefaultTitle is the title used by Create when none is given.
const DefaultTitle = "Project Management Sheet"

var (
	// ErrNotAuthenticated is returned before any service call when the
	// service reports no signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated with the remote service")
	// ErrInvalidRole indicates a role other than reader, writer or owner.
	ErrInvalidRole = errors.New("invalid role: must be reader, writer or owner")
	// ErrInvalidPrincipal indicates a malformed email address.
	ErrInvalidPrincipal = errors.New("invalid principal: expected an email address")
	// ErrInvalidID indicates an empty document id.
	ErrInvalidID = errors.New("document id must not be empty")
)

// Service is the remote document capability the registry drives.
type Service interface {
	IsAuthenticated(ctx context.Context) bool
	ListDocuments(ctx context.Context) ([]models.RemoteDocument, error)
	CreateDocument(ctx context.Context, title string) (models.RemoteDocument, error)
	GetDocument(ctx context.Context, id string) (models.RemoteDocument, error)
	GrantAccess(ctx context.Context, id, email string, role models.Role) error
}

// Registry keeps the local list of known remote documents. Records change
// only after the corresponding service call succeeded.
type Registry struct {
	svc    Service
	logger logging.Logger

	mu   sync.Mutex
	docs []models.RemoteDocument
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry returns an empty Registry backed by svc.
func NewRegistry(svc Service, opts ...Option) *Registry {
	r := &Registry{svc: svc, logger: logging.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) precheck(ctx context.Context, op string) error {
	if !r.svc.IsAuthenticated(ctx) {
		r.logger.Warn(ctx, "remote call rejected", "op", op, "reason", "not authenticated")
		return fmt.Errorf("%s: %w", op, ErrNotAuthenticated)
	}
	return nil
}

// List fetches the remote spreadsheets and replaces the local records with
// them, most recently modified first.
func (r *Registry) List(ctx context.Context) ([]models.RemoteDocument, error) {
	if err := r.precheck(ctx, "list"); err != nil {
		return nil, err
	}
	docs, err := r.svc.ListDocuments(ctx)
	if err != nil {
		r.logger.Error(ctx, "remote list failed", "error", err)
		return nil, fmt.Errorf("list: %w", err)
	}
	sorted := append([]models.RemoteDocument(nil), docs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Modified.After(sorted[j].Modified)
	})

	r.mu.Lock()
	r.docs = sorted
	r.mu.Unlock()

	r.logger.Debug(ctx, "remote documents listed", "count", len(sorted))
	return append([]models.RemoteDocument(nil), sorted...), nil
}

// Create asks the service for a new empty spreadsheet and records it.
func (r *Registry) Create(ctx context.Context, title string) (models.RemoteDocument, error) {
	if err := r.precheck(ctx, "create"); err != nil {
		return models.RemoteDocument{}, err
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	doc, err := r.svc.CreateDocument(ctx, title)
	if err != nil {
		r.logger.Error(ctx, "remote create failed", "title", title, "error", err)
		return models.RemoteDocument{}, fmt.Errorf("create: %w", err)
	}
	if doc.Title == "" {
		doc.Title = title
	}
	r.record(doc)
	r.logger.Info(ctx, "remote document created", "id", doc.ID, "title", doc.Title)
	return doc, nil
}

// Open resolves id to a navigable URL. Unknown ids are looked up through the
// service and recorded.
func (r *Registry) Open(ctx context.Context, id string) (string, error) {
	if err := r.precheck(ctx, "open"); err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("open: %w", ErrInvalidID)
	}
	if doc, ok := r.lookup(id); ok && doc.URL != "" {
		return doc.URL, nil
	}
	doc, err := r.svc.GetDocument(ctx, id)
	if err != nil {
		r.logger.Error(ctx, "remote open failed", "id", id, "error", err)
		return "", fmt.Errorf("open %s: %w", id, err)
	}
	if doc.ID == "" {
		doc.ID = id
	}
	r.record(doc)
	return doc.URL, nil
}

// Share grants role on document id to the principal identified by email.
func (r *Registry) Share(ctx context.Context, id, email string, role models.Role) error {
	if err := r.precheck(ctx, "share"); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("share: %w", ErrInvalidID)
	}
	if !role.Valid() {
		return fmt.Errorf("share: %w: %q", ErrInvalidRole, role)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("share: %w: %q", ErrInvalidPrincipal, email)
	}
	if err := r.svc.GrantAccess(ctx, id, addr.Address, role); err != nil {
		r.logger.Error(ctx, "remote share failed", "id", id, "role", role, "error", err)
		return fmt.Errorf("share %s: %w", id, err)
	}
	r.logger.Info(ctx, "remote document shared", "id", id, "email", addr.Address, "role", role)
	return nil
}

// Documents returns a copy of the known records.
func (r *Registry) Documents() []models.RemoteDocument {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.RemoteDocument(nil), r.docs...)
}

// Reset forgets every record, as on sign-out.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.docs = nil
	r.mu.Unlock()
}

func (r *Registry) lookup(id string) (models.RemoteDocument, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.ID == id {
			return d, true
		}
	}
	return models.RemoteDocument{}, false
}

// record adds doc, replacing an existing record with the same id.
func (r *Registry) record(doc models.RemoteDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.docs {
		if r.docs[i].ID == doc.ID {
			r.docs[i] = doc
			return
		}
	}
	r.docs = append([]models.RemoteDocument{doc}, r.docs...)
}

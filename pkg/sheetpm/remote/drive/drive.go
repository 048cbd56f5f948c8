// Package drive implements remote.Service over the Google Drive v3 and
// Sheets v4 APIs.
package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ukaji3/sheetpm-go/internal/logging"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/models"
	"github.com/ukaji3/sheetpm-go/pkg/sheetpm/remote"
	"golang.org/x/oauth2"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	// DefaultDriveURL is the Drive v3 service root.
	DefaultDriveURL = "https://www.googleapis.com/drive/v3/"
	// DefaultSheetsURL is the Sheets API host; request paths start with v4/.
	DefaultSheetsURL = "https://sheets.googleapis.com/"

	// SpreadsheetMimeType selects native spreadsheets in files.list.
	SpreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
	// FirstTabTitle is the title of the single tab of a created spreadsheet.
	FirstTabTitle = "Sheet1"

	listFields googleapi.Field = "nextPageToken,files(id,name,webViewLink,createdTime,modifiedTime,owners(displayName,emailAddress))"
	pageSize                   = 100
)

// DocumentURL returns the edit URL of a spreadsheet.
func DocumentURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + url.PathEscape(id) + "/edit"
}

// APIError is a non-2xx response from the remote API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote api: %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("remote api: %d %s", e.StatusCode, e.Status)
}

func (e *APIError) Unwrap() error { return e.Err }

// Client talks to the Drive and Sheets APIs with OAuth2 bearer tokens.
type Client struct {
	ts        oauth2.TokenSource
	base      *http.Client
	driveURL  string
	sheetsURL string
	logger    logging.Logger

	files  *gdrive.Service
	sheets *sheets.Service
	err    error
}

// Option configures a Client.
type Option func(*Client)

// WithDriveURL overrides the Drive v3 service root.
func WithDriveURL(u string) Option {
	return func(c *Client) { c.driveURL = withSlash(u) }
}

// WithSheetsURL overrides the Sheets API host.
func WithSheetsURL(u string) Option {
	return func(c *Client) { c.sheetsURL = withSlash(u) }
}

// WithHTTPClient sets the transport client wrapped by the OAuth2 client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.base = hc }
}

// WithLogger sets the client logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func withSlash(u string) string {
	return strings.TrimRight(u, "/") + "/"
}

// New returns a Client authenticating with ts. A nil ts yields a client that
// reports itself unauthenticated.
func New(ts oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		driveURL:  DefaultDriveURL,
		sheetsURL: DefaultSheetsURL,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if ts == nil {
		return c
	}

	c.ts = oauth2.ReuseTokenSource(nil, ts)
	ctx := context.Background()
	if c.base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	}
	hc := oauth2.NewClient(ctx, c.ts)
	c.files, c.err = gdrive.NewService(ctx, option.WithHTTPClient(hc), option.WithEndpoint(c.driveURL))
	if c.err != nil {
		c.err = fmt.Errorf("drive service: %w", c.err)
		return c
	}
	c.sheets, c.err = sheets.NewService(ctx, option.WithHTTPClient(hc), option.WithEndpoint(c.sheetsURL))
	if c.err != nil {
		c.err = fmt.Errorf("sheets service: %w", c.err)
	}
	return c
}

// IsAuthenticated reports whether a valid access token is available.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	if c.ts == nil {
		return false
	}
	tok, err := c.ts.Token()
	if err != nil {
		c.logger.Debug(ctx, "token unavailable", "error", err)
		return false
	}
	return tok.Valid()
}

func (c *Client) ready() error {
	if c.err != nil {
		return c.err
	}
	if c.files == nil || c.sheets == nil {
		return remote.ErrNotAuthenticated
	}
	return nil
}

// ListDocuments returns every non-trashed spreadsheet, most recently
// modified first, following pagination.
func (c *Client) ListDocuments(ctx context.Context) ([]models.RemoteDocument, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	var out []models.RemoteDocument
	pages := 0
	err := c.files.Files.List().
		Q(fmt.Sprintf("mimeType='%s' and trashed=false", SpreadsheetMimeType)).
		OrderBy("modifiedTime desc").
		PageSize(pageSize).
		Fields(listFields).
		Pages(ctx, func(page *gdrive.FileList) error {
			pages++
			for _, f := range page.Files {
				out = append(out, fileToModel(f))
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list files: %w", apiError(err))
	}
	c.logger.Debug(ctx, "listed spreadsheets", "count", len(out), "pages", pages)
	return out, nil
}

func fileToModel(f *gdrive.File) models.RemoteDocument {
	doc := models.RemoteDocument{
		ID:       f.Id,
		Title:    f.Name,
		URL:      f.WebViewLink,
		Created:  parseTime(f.CreatedTime),
		Modified: parseTime(f.ModifiedTime),
	}
	if doc.URL == "" {
		doc.URL = DocumentURL(f.Id)
	}
	for _, o := range f.Owners {
		doc.Owners = append(doc.Owners, models.Owner{DisplayName: o.DisplayName, EmailAddress: o.EmailAddress})
	}
	return doc
}

// parseTime reads an RFC 3339 timestamp; unparsable values are zero.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func spreadsheetToModel(s *sheets.Spreadsheet) models.RemoteDocument {
	doc := models.RemoteDocument{ID: s.SpreadsheetId, URL: s.SpreadsheetUrl}
	if s.Properties != nil {
		doc.Title = s.Properties.Title
	}
	if doc.URL == "" && doc.ID != "" {
		doc.URL = DocumentURL(doc.ID)
	}
	return doc
}

// CreateDocument creates a spreadsheet with a single "Sheet1" tab.
func (c *Client) CreateDocument(ctx context.Context, title string) (models.RemoteDocument, error) {
	if err := c.ready(); err != nil {
		return models.RemoteDocument{}, err
	}
	body := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
		Sheets:     []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: FirstTabTitle}}},
	}
	created, err := c.sheets.Spreadsheets.Create(body).Context(ctx).Do()
	if err != nil {
		return models.RemoteDocument{}, fmt.Errorf("create spreadsheet: %w", apiError(err))
	}
	doc := spreadsheetToModel(created)
	doc.Created = time.Now().UTC()
	doc.Modified = doc.Created
	return doc, nil
}

// GetDocument fetches the title and URL of a spreadsheet.
func (c *Client) GetDocument(ctx context.Context, id string) (models.RemoteDocument, error) {
	if err := c.ready(); err != nil {
		return models.RemoteDocument{}, err
	}
	got, err := c.sheets.Spreadsheets.Get(id).
		Fields("spreadsheetId", "spreadsheetUrl", "properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return models.RemoteDocument{}, fmt.Errorf("get spreadsheet %s: %w", id, apiError(err))
	}
	if got.SpreadsheetId == "" {
		got.SpreadsheetId = id
	}
	return spreadsheetToModel(got), nil
}

// GrantAccess creates a user permission on the file. Granting owner
// transfers ownership.
func (c *Client) GrantAccess(ctx context.Context, id, email string, role models.Role) error {
	if err := c.ready(); err != nil {
		return err
	}
	perm := &gdrive.Permission{Role: string(role), Type: "user", EmailAddress: email}
	call := c.files.Permissions.Create(id, perm).Context(ctx)
	if role == models.RoleOwner {
		call = call.TransferOwnership(true)
	}
	if _, err := call.Do(); err != nil {
		return fmt.Errorf("grant %s on %s: %w", role, id, apiError(err))
	}
	return nil
}

// apiError converts a *googleapi.Error into an *APIError carrying the
// canonical status name ("PERMISSION_DENIED") when the body has one.
func apiError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	apiErr := &APIError{
		StatusCode: gerr.Code,
		Status:     http.StatusText(gerr.Code),
		Message:    gerr.Message,
		Err:        err,
	}
	var payload struct {
		Error struct {
			Status string `json:"status"`
		} `json:"error"`
	}
	if json.Unmarshal([]byte(gerr.Body), &payload) == nil && payload.Error.Status != "" {
		apiErr.Status = payload.Error.Status
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(gerr.Body)
	}
	return apiErr
}

// Ensure interface satisfaction.
var _ remote.Service = (*Client)(nil)

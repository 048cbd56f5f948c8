package models

import "time"

// Workbook is the top-level document owning all sheets.
type Workbook struct {
	// ID is the workbook identifier.
	ID string `json:"id"`
	// Name is the workbook display name, also used as the export file stem.
	Name string `json:"name"`
	// Sheets maps sheet id to Sheet.
	Sheets map[string]*Sheet `json:"sheets"`
	// Order lists sheet ids in display order.
	Order []string `json:"order,omitempty"`
	// CurrentSheetID is the active sheet id, empty when no sheet exists yet.
	CurrentSheetID string `json:"currentSheetId"`
	// CreatedAt is the workbook creation time.
	CreatedAt time.Time `json:"createdAt"`
	// LastModified is the time of the last persist.
	LastModified time.Time `json:"lastModified"`
}

package models

import "time"

// Sheet represents one named grid of text cells.
//
// Every row in Data has exactly len(Columns) cells.
type Sheet struct {
	// ID is the unique sheet identifier within the workbook.
	ID string `json:"id"`
	// Name is the display name of the sheet.
	Name string `json:"name"`
	// Columns holds column metadata, leftmost first.
	Columns []Column `json:"columns"`
	// Data holds the cell values, topmost row first.
	Data [][]string `json:"data"`
	// ColumnSeq is the next numeric suffix used for a new column id.
	ColumnSeq int `json:"columnSeq,omitempty"`
	// CreatedAt is the sheet creation time.
	CreatedAt time.Time `json:"createdAt"`
	// LastModified is the time of the last structural or cell edit.
	LastModified time.Time `json:"lastModified"`
}

// RowCount returns the number of data rows.
func (s *Sheet) RowCount() int { return len(s.Data) }

// ColumnCount returns the number of columns.
func (s *Sheet) ColumnCount() int { return len(s.Columns) }

// SheetSummary is the read-only listing entry for a sheet.
type SheetSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Rows         int       `json:"rows"`
	Columns      int       `json:"columns"`
	Active       bool      `json:"active"`
	LastModified time.Time `json:"lastModified"`
}

// Package models defines data structures for the sheetpm workbook.
package models

// Column describes one column of a sheet.
type Column struct {
	// ID is the stable column identifier (e.g. "col_3"), never reused within a sheet.
	ID string `json:"id"`
	// Name is the user-editable display name; defaults to the letter sequence (A, B, ..., AA).
	Name string `json:"name"`
	// Width is the display width in pixels.
	Width int `json:"width"`
}

package models

import "time"

// Role is an access role granted on a remote document.
type Role string

const (
	RoleReader Role = "reader"
	RoleWriter Role = "writer"
	RoleOwner  Role = "owner"
)

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleWriter, RoleOwner:
		return true
	}
	return false
}

// Owner identifies an owner of a remote document.
type Owner struct {
	DisplayName  string `json:"displayName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// RemoteDocument describes a spreadsheet document living in the remote service.
// It is not part of the local workbook.
type RemoteDocument struct {
	// ID is the opaque remote identifier.
	ID string `json:"id"`
	// Title is the document title.
	Title string `json:"title"`
	// URL is the navigable location of the document.
	URL string `json:"url"`
	// Created is the creation time (zero if unknown).
	Created time.Time `json:"created,omitempty"`
	// Modified is the last modification time (zero if unknown).
	Modified time.Time `json:"modified,omitempty"`
	// Owners lists the document owners when the service reports them.
	Owners []Owner `json:"owners,omitempty"`
}

// Package models defines server-side data models and the JSON shapes of the
// scanner API.
package models

import "time"

// Passes mirrors the pass columns of an entry.
type Passes struct {
	ExhibitionDay1      bool `json:"exhibition_day1"`
	ExhibitionDay2      bool `json:"exhibition_day2"`
	InteractiveSessions bool `json:"interactive_sessions"`
	Plenary             bool `json:"plenary"`
}

// Entry is a registered pass holder.
type Entry struct {
	ID           int64  `json:"entry_id"`
	Name         string `json:"name"`
	Organization string `json:"organization"`
	Mobile       string `json:"mobile"`
	QRSignature  string `json:"qr_signature"`
	Passes       Passes `json:"passes"`
}

// EntriesResponse is the body of GET /api/scanner/entries.
type EntriesResponse struct {
	Success     bool      `json:"success"`
	Count       int       `json:"count"`
	LastUpdated time.Time `json:"last_updated"`
	Entries     []Entry   `json:"entries"`
}

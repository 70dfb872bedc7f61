// Package models defines client-side data models used by the gate scanner.
package models

// Pass type identifiers carried in QR claims and gate profiles.
const (
	PassExhibitionDay1      = "exhibition_day1"
	PassExhibitionDay2      = "exhibition_day2"
	PassExhibitionBothDays  = "exhibition_both_days"
	PassInteractiveSessions = "interactive_sessions"
	PassPlenary             = "plenary"
	PassExhibitor           = "exhibitor_pass"
	PassUnknown             = "unknown"
)

// Passes holds one flag per pass category granted to an entry.
type Passes struct {
	ExhibitionDay1      bool `json:"exhibition_day1"`
	ExhibitionDay2      bool `json:"exhibition_day2"`
	InteractiveSessions bool `json:"interactive_sessions"`
	Plenary             bool `json:"plenary"`
}

// Entry is a replicated pass-holder record. The local cache holds the
// server's last published snapshot; entries are never edited locally.
type Entry struct {
	// EntryID is the server-assigned primary key.
	EntryID int64 `json:"entry_id"`

	Name         string `json:"name"`
	Organization string `json:"organization"`
	Mobile       string `json:"mobile"`

	// QRSignature authenticates a scanned claim. Opaque to the client.
	QRSignature string `json:"qr_signature"`

	Passes Passes `json:"passes"`
}

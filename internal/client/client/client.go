package client

import (
	"context"

	"github.com/dmitrijs2005/gophgate/internal/client/models"
)

// EntryFilter narrows an entry download. Empty fields mean "all".
type EntryFilter struct {
	GateNumber string
	Date       string
}

// EntriesResponse is the body of GET /scanner/entries.
type EntriesResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Entries []models.Entry `json:"entries"`
}

// CheckIn is one item of a batch upload.
type CheckIn struct {
	EntryID            int64  `json:"entry_id"`
	SessionType        string `json:"session_type"`
	SessionName        string `json:"session_name"`
	GateNumber         string `json:"gate_number"`
	GateLocation       string `json:"gate_location"`
	ScannerDeviceID    string `json:"scanner_device_id"`
	ScannerOperator    string `json:"scanner_operator"`
	CheckInTime        string `json:"check_in_time"`
	VerificationStatus string `json:"verification_status"`
	Notes              string `json:"notes,omitempty"`
}

// BatchRequest is the body of POST /scanner/checkin/batch.
type BatchRequest struct {
	CheckIns []CheckIn `json:"checkins"`
}

// BatchResponse reports how the server reconciled a batch.
type BatchResponse struct {
	Success    bool   `json:"success"`
	Total      int    `json:"total"`
	Created    int    `json:"created"`
	Duplicates int    `json:"duplicates"`
	Errors     int    `json:"errors"`
	Message    string `json:"message"`
}

// Client talks to the remote authority. token is the bearer token of the
// calling session.
type Client interface {
	FetchEntries(ctx context.Context, token string, filter EntryFilter) (*EntriesResponse, error)
	UploadCheckIns(ctx context.Context, token string, checkIns []CheckIn) (*BatchResponse, error)
	Ping(ctx context.Context) error
}

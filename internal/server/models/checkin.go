package models

import "time"

// VerificationVerified is the default verification status of a check-in.
const VerificationVerified = "verified"

// CheckIn is one recorded gate admission.
type CheckIn struct {
	ID                 int64     `json:"id,omitempty"`
	EntryID            int64     `json:"entry_id"`
	SessionType        string    `json:"session_type"`
	SessionName        string    `json:"session_name"`
	GateNumber         string    `json:"gate_number"`
	GateLocation       string    `json:"gate_location"`
	CheckInTime        time.Time `json:"check_in_time"`
	ScannerDeviceID    string    `json:"scanner_device_id"`
	ScannerOperator    string    `json:"scanner_operator"`
	VerificationStatus string    `json:"verification_status"`
	Notes              string    `json:"notes,omitempty"`
}

// CheckInBatch is the body of POST /api/scanner/checkin/batch.
type CheckInBatch struct {
	CheckIns []CheckIn `json:"checkins"`
}

// BatchResult reports how a batch was reconciled.
type BatchResult struct {
	Success      bool     `json:"success"`
	Total        int      `json:"total"`
	Created      int      `json:"created"`
	Duplicates   int      `json:"duplicates"`
	Errors       int      `json:"errors"`
	Message      string   `json:"message"`
	ErrorDetails []string `json:"error_details,omitempty"`
}

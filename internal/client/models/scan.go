package models

import "time"

// PendingScan is a locally queued check-in awaiting upload. It is created on
// every admitted scan and flips to Uploaded exactly once.
type PendingScan struct {
	ID              int64
	EntryID         int64
	SessionType     string
	SessionName     string
	GateNumber      string
	GateLocation    string
	CheckInTime     time.Time
	ScannerDeviceID string
	ScannerOperator string
	Uploaded        bool
	CreatedAt       time.Time
}

// ScanRecord is the outcome of one scan as shown to the operator.
type ScanRecord struct {
	EntryID      int64
	Name         string
	Organization string
	PassType     string
	GateNumber   string
	ScanTime     time.Time
	Allowed      bool

	// Reason explains a denial, Message confirms an admission.
	Reason  string
	Message string

	// Cause is the sentinel behind Reason, for errors.Is matching.
	Cause error
}

// UploadResult echoes the server's reconciliation counts for one batch.
type UploadResult struct {
	Total      int
	Created    int
	Duplicates int
	Errors     int
}

// SyncStats are cheap local counters used to drive the prompt and to decide
// whether a sync is worth attempting.
type SyncStats struct {
	TotalEntries int
	PendingScans int

	// Zero when the step never succeeded on this device.
	LastDownloadAt time.Time
	LastUploadAt   time.Time
}

// Session is the device/operator context threaded into admission and sync.
type Session struct {
	DeviceID string
	Operator string
	Token    string
}

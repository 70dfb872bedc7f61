package services

import "errors"

// Denial causes. Each maps to the operator-facing reason of a ScanRecord.
var (
	ErrEntryNotFound     = errors.New("entry not found")
	ErrInvalidSignature  = errors.New("invalid QR signature")
	ErrInvalidGate       = errors.New("invalid gate")
	ErrWrongPass         = errors.New("wrong pass for this gate")
	ErrWrongDate         = errors.New("wrong date for this pass")
	ErrOutsideTimeWindow = errors.New("outside session time window")
	ErrDuplicateScan     = errors.New("already checked in")
)

var (
	// ErrSyncInProgress is returned when an upload is requested while another
	// one is running.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrScanCooldown is returned when the same payload is scanned again
	// within the cooldown window.
	ErrScanCooldown = errors.New("scan ignored during cooldown")
)

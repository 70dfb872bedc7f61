package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/client/models"
	"github.com/dmitrijs2005/gophgate/internal/client/qr"
	"github.com/dmitrijs2005/gophgate/internal/client/repositories/entries"
	"github.com/dmitrijs2005/gophgate/internal/client/repositories/scans"
	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
)

// Operator-facing texts.
const (
	ReasonInvalidFormat    = "Invalid QR code format"
	ReasonEntryNotFound    = "Entry not found"
	ReasonInvalidSignature = "Invalid QR signature"
	ReasonInvalidGate      = "Invalid gate"
	ReasonWrongPass        = "Wrong pass for this gate"
	ReasonWrongDate        = "Wrong date for this pass"
	ReasonDuplicateScan    = "Already checked in at this gate today"
	MessageGranted         = "Entry granted"

	sessionTimePrefix = "Session time: "
)

// ClaimParser decodes a raw payload. *qr.Parser implements it.
type ClaimParser interface {
	Parse(raw string) (qr.Claim, error)
}

// AdmissionService decides locally whether a scanned pass may enter a gate
// and queues admitted check-ins for upload.
type AdmissionService interface {
	// Decide runs the admission checks for an already parsed claim. A denial
	// is a record with Allowed=false and a nil error. A non-nil error means
	// local storage failed and the scan must be repeated.
	Decide(ctx context.Context, sess models.Session, claim qr.Claim, gateID string, now time.Time) (*models.ScanRecord, error)

	// Scan parses raw and then decides.
	Scan(ctx context.Context, sess models.Session, raw, gateID string, now time.Time) (*models.ScanRecord, error)
}

// AdmissionOptions configures NewAdmissionService.
type AdmissionOptions struct {
	Gates map[string]models.GateProfile

	// Location is the zone gate dates and windows are expressed in.
	// Nil means time.Local.
	Location *time.Location

	// DenyDuplicates rejects a second admission of the same entry at the
	// same gate on the same local day.
	DenyDuplicates bool

	// Parser defaults to qr.NewParser().
	Parser ClaimParser
}

type admissionService struct {
	entryRepo entries.Repository
	scanRepo  scans.Repository
	opts      AdmissionOptions
	log       logging.Logger
}

func NewAdmissionService(entryRepo entries.Repository, scanRepo scans.Repository, opts AdmissionOptions, log logging.Logger) AdmissionService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Parser == nil {
		opts.Parser = qr.NewParser()
	}
	return &admissionService{
		entryRepo: entryRepo,
		scanRepo:  scanRepo,
		opts:      opts,
		log:       log.With("component", "admission"),
	}
}

func (s *admissionService) Scan(ctx context.Context, sess models.Session, raw, gateID string, now time.Time) (*models.ScanRecord, error) {
	claim, err := s.opts.Parser.Parse(raw)
	if err != nil {
		s.log.Info(ctx, "scan rejected", "gate", gateID, "reason", ReasonInvalidFormat)
		return &models.ScanRecord{
			GateNumber: gateID,
			ScanTime:   now,
			Reason:     ReasonInvalidFormat,
			Cause:      qr.ErrInvalidFormat,
		}, nil
	}
	return s.Decide(ctx, sess, claim, gateID, now)
}

func (s *admissionService) Decide(ctx context.Context, sess models.Session, claim qr.Claim, gateID string, now time.Time) (*models.ScanRecord, error) {
	rec := &models.ScanRecord{
		EntryID:    claim.EntryID,
		Name:       claim.Name,
		PassType:   claim.PassType,
		GateNumber: gateID,
		ScanTime:   now,
	}

	entry, err := s.resolve(ctx, claim)
	if errors.Is(err, common.ErrorNotFound) {
		return s.deny(ctx, rec, ReasonEntryNotFound, ErrEntryNotFound), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: resolve entry: %w", common.ErrStorage, err)
	}

	rec.EntryID = entry.EntryID
	rec.Name = entry.Name
	rec.Organization = entry.Organization

	if entry.QRSignature != claim.Signature {
		return s.deny(ctx, rec, ReasonInvalidSignature, ErrInvalidSignature), nil
	}

	gate, ok := s.opts.Gates[gateID]
	if !ok {
		return s.deny(ctx, rec, ReasonInvalidGate, ErrInvalidGate), nil
	}

	if !gate.Allows(claim.PassType) {
		return s.deny(ctx, rec, ReasonWrongPass, ErrWrongPass), nil
	}

	local := now.In(s.opts.Location)
	today := local.Format(common.DateLayout)

	if gate.Date != "" && gate.Date != today {
		return s.deny(ctx, rec, ReasonWrongDate, ErrWrongDate), nil
	}

	if gate.Time != "" && !withinWindow(gate.Time, local.Format(common.ClockLayout)) {
		return s.deny(ctx, rec, sessionTimePrefix+gate.Time, ErrOutsideTimeWindow), nil
	}

	if s.opts.DenyDuplicates {
		dup, err := s.scanRepo.HasScan(ctx, entry.EntryID, gateID, today)
		if err != nil {
			return nil, fmt.Errorf("%w: duplicate lookup: %w", common.ErrStorage, err)
		}
		if dup {
			return s.deny(ctx, rec, ReasonDuplicateScan, ErrDuplicateScan), nil
		}
	}

	sessionType := gate.SessionType
	if sessionType == "" {
		sessionType = claim.PassType
	}

	scan := &models.PendingScan{
		EntryID:         entry.EntryID,
		SessionType:     sessionType,
		SessionName:     gate.Name,
		GateNumber:      gateID,
		GateLocation:    gate.Location,
		CheckInTime:     now,
		ScannerDeviceID: sess.DeviceID,
		ScannerOperator: sess.Operator,
	}
	if _, err := s.scanRepo.Enqueue(ctx, scan, today); err != nil {
		s.log.Error(ctx, "check-in not queued", "entry_id", entry.EntryID, "gate", gateID, "error", err)
		return nil, fmt.Errorf("%w: enqueue: %w", common.ErrStorage, err)
	}

	rec.Allowed = true
	rec.Message = MessageGranted
	s.log.Info(ctx, "entry granted", "entry_id", entry.EntryID, "gate", gateID, "scan_id", scan.ID)
	return rec, nil
}

func (s *admissionService) resolve(ctx context.Context, claim qr.Claim) (*models.Entry, error) {
	if claim.EntryID != 0 {
		return s.entryRepo.FindByID(ctx, claim.EntryID)
	}
	return s.entryRepo.FindBySignature(ctx, claim.Signature)
}

func (s *admissionService) deny(ctx context.Context, rec *models.ScanRecord, reason string, cause error) *models.ScanRecord {
	rec.Allowed = false
	rec.Reason = reason
	rec.Cause = cause
	s.log.Info(ctx, "entry denied", "entry_id", rec.EntryID, "gate", rec.GateNumber, "reason", reason)
	return rec
}

// withinWindow reports whether clock ("HHMM") lies in the inclusive window
// "HHMM-HHMM". Comparison is lexicographic; windows never wrap midnight.
func withinWindow(window, clock string) bool {
	start, end, ok := strings.Cut(window, "-")
	if !ok {
		return false
	}
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	return clock >= start && clock <= end
}

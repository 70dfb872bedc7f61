package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophgate/internal/dbx"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/repomanager"
)

var (
	errMissingEntryID     = errors.New("entry_id must be positive")
	errMissingSessionType = errors.New("session_type is required")
	errMissingTime        = errors.New("check_in_time is required")
)

// CheckInService reconciles check-in batches uploaded by scanners.
type CheckInService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewCheckInService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *CheckInService {
	return &CheckInService{db: db, repomanager: m, log: log.With("component", "checkins")}
}

// RecordBatch stores every new check-in of items in one transaction.
//
// A check-in is a duplicate when one with the same entry, session type and
// time exists, including earlier items of the same batch. Invalid items and
// unknown entries are counted as errors and skipped. operator fills in items
// that carry no scanner operator.
//
// When the transaction fails nothing is stored and the result reports
// Success=false with every non-duplicate item counted as an error.
func (s *CheckInService) RecordBatch(ctx context.Context, operator string, items []models.CheckIn) *models.BatchResult {
	res := &models.BatchResult{Success: true, Total: len(items)}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		entryRepo := s.repomanager.Entries(tx)
		checkInRepo := s.repomanager.CheckIns(tx)

		for i := range items {
			c := items[i]
			if err := validateCheckIn(c); err != nil {
				res.Errors++
				res.ErrorDetails = append(res.ErrorDetails, fmt.Sprintf("Item %d: %v", i, err))
				continue
			}

			dup, err := checkInRepo.Exists(ctx, c.EntryID, c.SessionType, c.CheckInTime)
			if err != nil {
				return err
			}
			if dup {
				res.Duplicates++
				continue
			}

			known, err := entryRepo.Exists(ctx, c.EntryID)
			if err != nil {
				return err
			}
			if !known {
				res.Errors++
				res.ErrorDetails = append(res.ErrorDetails, fmt.Sprintf("Entry ID %d not found", c.EntryID))
				continue
			}

			if c.ScannerOperator == "" {
				c.ScannerOperator = operator
			}
			if c.VerificationStatus == "" {
				c.VerificationStatus = models.VerificationVerified
			}
			if err := checkInRepo.Create(ctx, &c); err != nil {
				return err
			}
			res.Created++
		}
		return nil
	})
	if err != nil {
		s.log.Error(ctx, "check-in batch rolled back", "operator", operator, "total", len(items), "error", err)
		return &models.BatchResult{
			Success:      false,
			Total:        res.Total,
			Duplicates:   res.Duplicates,
			Errors:       res.Total - res.Duplicates,
			Message:      "Batch not stored",
			ErrorDetails: []string{fmt.Sprintf("Database error: %v", err)},
		}
	}

	res.Message = fmt.Sprintf("%d created, %d duplicates, %d errors", res.Created, res.Duplicates, res.Errors)
	s.log.Info(ctx, "check-in batch stored", "operator", operator, "total", res.Total,
		"created", res.Created, "duplicates", res.Duplicates, "errors", res.Errors)
	return res
}

func validateCheckIn(c models.CheckIn) error {
	switch {
	case c.EntryID <= 0:
		return errMissingEntryID
	case c.SessionType == "":
		return errMissingSessionType
	case c.CheckInTime.IsZero():
		return errMissingTime
	}
	return nil
}

// Package services contains server-side business logic of the check-in
// authority: publishing the entry list and reconciling uploaded check-ins.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophgate/internal/dbx"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/dmitrijs2005/gophgate/internal/server/repositories/repomanager"
)

// EntryService publishes registered entries to scanner devices.
type EntryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewEntryService(db *sql.DB, m repomanager.RepositoryManager) *EntryService {
	return &EntryService{db: db, repomanager: m}
}

// List returns the full entry snapshot.
func (s *EntryService) List(ctx context.Context) ([]models.Entry, error) {
	list, err := s.repomanager.Entries(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	return list, nil
}

// Import upserts entries in one transaction and returns how many were written.
func (s *EntryService) Import(ctx context.Context, list []models.Entry) (int, error) {
	for _, e := range list {
		if e.ID <= 0 || e.QRSignature == "" {
			return 0, fmt.Errorf("invalid entry %d: id and qr_signature are required", e.ID)
		}
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Entries(tx)
		for i := range list {
			if err := repo.Upsert(ctx, &list[i]); err != nil {
				return fmt.Errorf("error importing entry %d: %w", list[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

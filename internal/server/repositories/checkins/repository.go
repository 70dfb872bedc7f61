package checkins

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/server/models"
)

type Repository interface {
	// Exists reports whether a check-in with the same entry, session type
	// and time was already recorded.
	Exists(ctx context.Context, entryID int64, sessionType string, at time.Time) (bool, error)

	// Create inserts c and sets its ID.
	Create(ctx context.Context, c *models.CheckIn) error
}

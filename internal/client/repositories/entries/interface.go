package entries

import (
	"context"

	"github.com/dmitrijs2005/gophgate/internal/client/models"
)

// Repository describes read access to the cached entry snapshot plus the
// single write operation that swaps it.
type Repository interface {
	// Replace atomically discards all cached entries and stores the given ones.
	Replace(ctx context.Context, entries []models.Entry) error

	// FindByID returns common.ErrorNotFound when no entry has the id.
	FindByID(ctx context.Context, id int64) (*models.Entry, error)

	// FindBySignature returns the first stored entry carrying sig, or
	// common.ErrorNotFound.
	FindBySignature(ctx context.Context, sig string) (*models.Entry, error)

	Count(ctx context.Context) (int, error)
}

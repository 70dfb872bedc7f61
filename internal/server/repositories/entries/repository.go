package entries

import (
	"context"

	"github.com/dmitrijs2005/gophgate/internal/server/models"
)

type Repository interface {
	// List returns every entry ordered by id.
	List(ctx context.Context) ([]models.Entry, error)

	// Exists reports whether an entry with id is registered.
	Exists(ctx context.Context, id int64) (bool, error)

	// Upsert inserts e or overwrites the entry with the same id.
	Upsert(ctx context.Context, e *models.Entry) error
}

package categories

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists categories. Every call is scoped to one owner.
type Repository interface {
	Create(ctx context.Context, c Category) (Category, error)
	FindIDByName(ctx context.Context, userID uuid.UUID, name string) (uuid.UUID, error)
	List(ctx context.Context, userID uuid.UUID) ([]Category, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

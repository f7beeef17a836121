package links

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists links. Every call is scoped to one owner; ids that are
// absent or belong to someone else behave as if they did not exist.
type Repository interface {
	Create(ctx context.Context, link Link) (Link, error)
	FindIDByURL(ctx context.Context, userID uuid.UUID, url string) (uuid.UUID, error)
	List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Link, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	// Update returns a NotFound error when no owned link matches.
	Update(ctx context.Context, userID, id uuid.UUID, patch Patch) (Link, error)
	// SetCategory reports whether an owned link matched. A nil categoryID clears it.
	SetCategory(ctx context.Context, userID, linkID uuid.UUID, categoryID *uuid.UUID) (bool, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

package categories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/sundayezeilo/readit/internal/db/sqlc"
	"github.com/sundayezeilo/readit/internal/errx"
	"github.com/sundayezeilo/readit/internal/idgen"
)

// querier is the subset of *db.Queries this repository uses.
type querier interface {
	CreateCategory(ctx context.Context, arg db.CreateCategoryParams) (db.Category, error)
	FindCategoryIDByName(ctx context.Context, arg db.FindCategoryIDByNameParams) (uuid.UUID, error)
	ListCategories(ctx context.Context, userID uuid.UUID) ([]db.Category, error)
	DeleteCategory(ctx context.Context, arg db.DeleteCategoryParams) error
}

type repo struct {
	q   querier
	ids idgen.Generator
}

// RepositoryConfig holds configuration for the repository.
type RepositoryConfig struct {
	IDGenerator idgen.Generator
}

// NewRepository creates a Postgres-backed Repository.
func NewRepository(q querier, config *RepositoryConfig) Repository {
	if config == nil {
		config = &RepositoryConfig{}
	}
	if config.IDGenerator == nil {
		config.IDGenerator = idgen.NewV7(idgen.WithRetries(1))
	}

	return &repo{
		q:   q,
		ids: config.IDGenerator,
	}
}

func mustTime(ts pgtype.Timestamptz, field string) (time.Time, error) {
	if !ts.Valid {
		return time.Time{}, fmt.Errorf("%s unexpectedly NULL", field)
	}
	return ts.Time, nil
}

func toDomainCategory(x db.Category) (Category, error) {
	createdAt, err := mustTime(x.CreatedAt, "created_at")
	if err != nil {
		return Category{}, err
	}
	return Category{
		ID:        x.ID,
		UserID:    x.UserID,
		Name:      x.Name,
		Color:     x.Color,
		CreatedAt: createdAt,
	}, nil
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, err)

	case isNameUniqueViolation(err):
		return errx.E(op, errx.Conflict, err)

	case isCheckViolation(err), isDataException(err):
		return errx.E(op, errx.Invalid, err)

	default:
		return errx.E(op, errx.Internal, err)
	}
}

func (r *repo) Create(ctx context.Context, c Category) (Category, error) {
	const op = "categories.repo.Create"

	if c.ID == uuid.Nil {
		id, err := r.ids.Generate()
		if err != nil {
			return Category{}, errx.E(op, errx.Internal, err)
		}
		c.ID = id
	}

	row, err := r.q.CreateCategory(ctx, db.CreateCategoryParams{
		ID:     c.ID,
		UserID: c.UserID,
		Name:   c.Name,
		Color:  c.Color,
	})
	if err != nil {
		return Category{}, mapRepoError(op, err)
	}

	out, err := toDomainCategory(row)
	if err != nil {
		return Category{}, errx.E(op, errx.Internal, err)
	}
	return out, nil
}

func (r *repo) FindIDByName(ctx context.Context, userID uuid.UUID, name string) (uuid.UUID, error) {
	const op = "categories.repo.FindIDByName"

	id, err := r.q.FindCategoryIDByName(ctx, db.FindCategoryIDByNameParams{
		UserID: userID,
		Name:   name,
	})
	if err != nil {
		return uuid.Nil, mapRepoError(op, err)
	}
	return id, nil
}

func (r *repo) List(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	const op = "categories.repo.List"

	rows, err := r.q.ListCategories(ctx, userID)
	if err != nil {
		return nil, mapRepoError(op, err)
	}

	out := make([]Category, 0, len(rows))
	for _, row := range rows {
		c, err := toDomainCategory(row)
		if err != nil {
			return nil, errx.E(op, errx.Internal, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const op = "categories.repo.Delete"
	if err := r.q.DeleteCategory(ctx, db.DeleteCategoryParams{ID: id, UserID: userID}); err != nil {
		return mapRepoError(op, err)
	}
	return nil
}

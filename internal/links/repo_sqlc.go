package links

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
	CreateLink(ctx context.Context, arg db.CreateLinkParams) (db.Link, error)
	FindLinkIDByURL(ctx context.Context, arg db.FindLinkIDByURLParams) (uuid.UUID, error)
	ListLinks(ctx context.Context, arg db.ListLinksParams) ([]db.ListLinksRow, error)
	MarkLinkRead(ctx context.Context, arg db.MarkLinkReadParams) error
	UpdateLink(ctx context.Context, arg db.UpdateLinkParams) (db.Link, error)
	SetLinkCategory(ctx context.Context, arg db.SetLinkCategoryParams) (int64, error)
	DeleteLink(ctx context.Context, arg db.DeleteLinkParams) error
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

	// UUID v7 keeps inserts index-local.
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

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func toText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func uuidPtr(u uuid.NullUUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	id := u.UUID
	return &id
}

func toNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func toDomainLink(x db.Link) (Link, error) {
	createdAt, err := mustTime(x.CreatedAt, "created_at")
	if err != nil {
		return Link{}, err
	}
	return Link{
		ID:         x.ID,
		UserID:     x.UserID,
		URL:        x.Url,
		Title:      textPtr(x.Title),
		Status:     Status(x.Status),
		CategoryID: uuidPtr(x.CategoryID),
		CreatedAt:  createdAt,
	}, nil
}

func toDomainListRow(x db.ListLinksRow) (Link, error) {
	link, err := toDomainLink(db.Link{
		ID:         x.ID,
		UserID:     x.UserID,
		Url:        x.Url,
		Title:      x.Title,
		Status:     x.Status,
		CategoryID: x.CategoryID,
		CreatedAt:  x.CreatedAt,
	})
	if err != nil {
		return Link{}, err
	}
	if x.CategoryID.Valid && x.CategoryName.Valid {
		link.Category = &CategoryRef{
			ID:    x.CategoryID.UUID,
			Name:  x.CategoryName.String,
			Color: x.CategoryColor.String,
		}
	}
	return link, nil
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, err)

	case isURLUniqueViolation(err):
		return errx.E(op, errx.Conflict, err)

	case isCategoryOwnerViolation(err), isCheckViolation(err), isDataException(err):
		return errx.E(op, errx.Invalid, err)

	default:
		return errx.E(op, errx.Internal, err)
	}
}

func (r *repo) Create(ctx context.Context, link Link) (Link, error) {
	const op = "links.repo.Create"

	if link.ID == uuid.Nil {
		id, err := r.ids.Generate()
		if err != nil {
			return Link{}, errx.E(op, errx.Internal, err)
		}
		link.ID = id
	}

	row, err := r.q.CreateLink(ctx, db.CreateLinkParams{
		ID:     link.ID,
		UserID: link.UserID,
		Url:    link.URL,
		Title:  toText(link.Title),
	})
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}

	out, err := toDomainLink(row)
	if err != nil {
		return Link{}, errx.E(op, errx.Internal, err)
	}
	return out, nil
}

func (r *repo) FindIDByURL(ctx context.Context, userID uuid.UUID, url string) (uuid.UUID, error) {
	const op = "links.repo.FindIDByURL"

	id, err := r.q.FindLinkIDByURL(ctx, db.FindLinkIDByURLParams{
		UserID: userID,
		Url:    url,
	})
	if err != nil {
		return uuid.Nil, mapRepoError(op, err)
	}
	return id, nil
}

func (r *repo) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Link, error) {
	const op = "links.repo.List"

	params := db.ListLinksParams{
		UserID:     userID,
		CategoryID: toNullUUID(filter.CategoryID),
	}
	if filter.Status != nil {
		params.Status = pgtype.Text{String: string(*filter.Status), Valid: true}
	}

	rows, err := r.q.ListLinks(ctx, params)
	if err != nil {
		return nil, mapRepoError(op, err)
	}

	out := make([]Link, 0, len(rows))
	for _, row := range rows {
		link, err := toDomainListRow(row)
		if err != nil {
			return nil, errx.E(op, errx.Internal, err)
		}
		out = append(out, link)
	}
	return out, nil
}

func (r *repo) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	const op = "links.repo.MarkRead"
	if err := r.q.MarkLinkRead(ctx, db.MarkLinkReadParams{ID: id, UserID: userID}); err != nil {
		return mapRepoError(op, err)
	}
	return nil
}

func (r *repo) Update(ctx context.Context, userID, id uuid.UUID, patch Patch) (Link, error) {
	const op = "links.repo.Update"

	params := db.UpdateLinkParams{
		Url:        toText(patch.URL),
		ClearTitle: patch.ClearTitle,
		Title:      toText(patch.Title),
		ID:         id,
		UserID:     userID,
	}
	if patch.Status != nil {
		params.Status = pgtype.Text{String: string(*patch.Status), Valid: true}
	}

	row, err := r.q.UpdateLink(ctx, params)
	if err != nil {
		return Link{}, mapRepoError(op, err)
	}

	out, err := toDomainLink(row)
	if err != nil {
		return Link{}, errx.E(op, errx.Internal, err)
	}
	return out, nil
}

func (r *repo) SetCategory(ctx context.Context, userID, linkID uuid.UUID, categoryID *uuid.UUID) (bool, error) {
	const op = "links.repo.SetCategory"

	n, err := r.q.SetLinkCategory(ctx, db.SetLinkCategoryParams{
		CategoryID: toNullUUID(categoryID),
		ID:         linkID,
		UserID:     userID,
	})
	if err != nil {
		return false, mapRepoError(op, err)
	}
	return n > 0, nil
}

func (r *repo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const op = "links.repo.Delete"
	if err := r.q.DeleteLink(ctx, db.DeleteLinkParams{ID: id, UserID: userID}); err != nil {
		return mapRepoError(op, err)
	}
	return nil
}

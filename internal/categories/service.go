package categories

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sundayezeilo/readit/internal/errx"
	"github.com/sundayezeilo/readit/internal/metrics"
)

const MaxNameLength = 64

var defaultPalette = [...]string{
	"#ef4444",
	"#f97316",
	"#f59e0b",
	"#10b981",
	"#06b6d4",
	"#3b82f6",
	"#6366f1",
	"#8b5cf6",
	"#d946ef",
	"#f43f5e",
}

// DefaultPalette returns a fresh copy of the built-in category colors.
func DefaultPalette() []string {
	out := make([]string, len(defaultPalette))
	copy(out, defaultPalette[:])
	return out
}

// ErrDuplicateName is the cause carried by a Conflict from Create.
var ErrDuplicateName = errors.New("category already exists")

// Service defines category operations. Every method is owner-scoped.
type Service interface {
	Colors() []string
	Create(ctx context.Context, userID uuid.UUID, name string) (Category, error)
	List(ctx context.Context, userID uuid.UUID) ([]Category, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo    Repository
	palette []string
	pick    func(n int) int
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	Palette []string        // copied; DefaultPalette when empty
	Pick    func(n int) int // returns an index in [0, n); rand.IntN when nil
}

// NewService creates a new service instance.
func NewService(repo Repository, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	palette := DefaultPalette()
	if len(config.Palette) > 0 {
		palette = make([]string, len(config.Palette))
		copy(palette, config.Palette)
	}

	pick := config.Pick
	if pick == nil {
		pick = rand.IntN
	}

	return &service{
		repo:    repo,
		palette: palette,
		pick:    pick,
	}
}

func (s *service) Colors() []string {
	out := make([]string, len(s.palette))
	copy(out, s.palette)
	return out
}

// Create adds a category named name for userID. Any color the caller had in
// mind is irrelevant: the color is drawn from the palette.
func (s *service) Create(ctx context.Context, userID uuid.UUID, name string) (Category, error) {
	const op = "categories.service.Create"

	if userID == uuid.Nil {
		return Category{}, errx.E(op, errx.Unauthenticated, errors.New("user id is required"))
	}
	if err := validateName(name); err != nil {
		metrics.CategoriesCreatedTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return Category{}, errx.E(op, errx.Invalid, err)
	}

	// Fast path; the unique constraint decides under concurrency.
	_, err := s.repo.FindIDByName(ctx, userID, name)
	switch {
	case err == nil:
		metrics.CategoriesCreatedTotal.WithLabelValues(metrics.ResultDuplicate).Inc()
		return Category{}, errx.E(op, errx.Conflict, ErrDuplicateName)
	case !errx.Is(err, errx.NotFound):
		metrics.CategoriesCreatedTotal.WithLabelValues(metrics.ResultError).Inc()
		return Category{}, errx.Wrap(op, err)
	}

	created, err := s.repo.Create(ctx, Category{
		UserID: userID,
		Name:   name,
		Color:  s.palette[s.pick(len(s.palette))],
	})
	if err != nil {
		if errx.Is(err, errx.Conflict) {
			metrics.CategoriesCreatedTotal.WithLabelValues(metrics.ResultDuplicate).Inc()
			return Category{}, errx.E(op, errx.Conflict, ErrDuplicateName)
		}
		metrics.CategoriesCreatedTotal.WithLabelValues(metrics.ResultError).Inc()
		return Category{}, errx.Wrap(op, err)
	}

	metrics.CategoriesCreatedTotal.WithLabelValues(metrics.ResultCreated).Inc()
	return created, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]Category, error) {
	const op = "categories.service.List"

	if userID == uuid.Nil {
		return nil, errx.E(op, errx.Unauthenticated, errors.New("user id is required"))
	}

	out, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, errx.Wrap(op, err)
	}
	return out, nil
}

// Delete removes the category. Absent or foreign ids are not an error.
// Links referencing it lose their category in the same statement.
func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const op = "categories.service.Delete"

	if userID == uuid.Nil {
		return errx.E(op, errx.Unauthenticated, errors.New("user id is required"))
	}
	if id == uuid.Nil {
		return errx.E(op, errx.Invalid, errors.New("id is required"))
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return errx.Wrap(op, err)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return errors.New("name cannot be empty")
	}
	if !utf8.ValidString(name) || strings.ContainsRune(name, 0) {
		return errors.New("name must be valid text")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("name too long (max %d characters)", MaxNameLength)
	}
	return nil
}

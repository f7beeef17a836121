package links

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/sundayezeilo/readit/internal/errx"
	"github.com/sundayezeilo/readit/internal/metrics"
)

const (
	MaxURLLength   = 2048
	MaxTitleLength = 512
)

var (
	// ErrDuplicateURL is the cause carried by a Conflict from Create or Update.
	ErrDuplicateURL = errors.New("link already saved")
	// ErrUnknownCategory is returned when a link is assigned a category the
	// caller does not own.
	ErrUnknownCategory = errors.New("category does not exist")
)

// TitleResolver looks up a page title. It never fails; ok is false when no
// title could be found.
type TitleResolver interface {
	Resolve(ctx context.Context, url string) (title string, ok bool)
}

// CreateLinkRequest represents the parameters for saving a link.
type CreateLinkRequest struct {
	URL   string
	Title *string // optional; resolved from the page when nil or blank
}

// UpdateLinkRequest is a partial update. Nil fields are left alone.
type UpdateLinkRequest struct {
	Status *string
	Title  *string
	URL    *string
}

// Service defines link operations. Every method is owner-scoped.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateLinkRequest) (Link, error)
	List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Link, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetCategory(ctx context.Context, userID, linkID uuid.UUID, categoryID *uuid.UUID) error
	Update(ctx context.Context, userID, id uuid.UUID, req UpdateLinkRequest) (Link, bool, error)
}

type service struct {
	repo   Repository
	titles TitleResolver
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	TitleResolver TitleResolver // nil disables title lookup
}

type noTitles struct{}

func (noTitles) Resolve(context.Context, string) (string, bool) { return "", false }

// NewService creates a new service instance.
func NewService(repo Repository, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	titles := config.TitleResolver
	if titles == nil {
		titles = noTitles{}
	}

	return &service{
		repo:   repo,
		titles: titles,
	}
}

func requireUser(op string, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return errx.E(op, errx.Unauthenticated, errors.New("user id is required"))
	}
	return nil
}

// Create saves a link for userID. A URL the user already saved is a Conflict
// and skips the title lookup.
func (s *service) Create(ctx context.Context, userID uuid.UUID, req CreateLinkRequest) (Link, error) {
	const op = "links.service.Create"

	if err := requireUser(op, userID); err != nil {
		return Link{}, err
	}
	if err := ValidateURL(req.URL); err != nil {
		metrics.LinksCreatedTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return Link{}, errx.E(op, errx.Invalid, err)
	}

	// Fast path; the unique constraint decides under concurrency.
	_, err := s.repo.FindIDByURL(ctx, userID, req.URL)
	switch {
	case err == nil:
		metrics.LinksCreatedTotal.WithLabelValues(metrics.ResultDuplicate).Inc()
		return Link{}, errx.E(op, errx.Conflict, ErrDuplicateURL)
	case !errx.Is(err, errx.NotFound):
		metrics.LinksCreatedTotal.WithLabelValues(metrics.ResultError).Inc()
		return Link{}, errx.Wrap(op, err)
	}

	link := Link{
		UserID: userID,
		URL:    req.URL,
		Title:  normalizeTitle(req.Title),
		Status: StatusUnread,
	}
	fetched := false
	if link.Title == nil {
		if resolved, ok := s.titles.Resolve(ctx, req.URL); ok {
			link.Title = normalizeTitle(&resolved)
			fetched = link.Title != nil
		}
	}

	created, err := s.repo.Create(ctx, link)
	if err != nil && fetched && errx.Is(err, errx.Invalid) {
		// A fetched title the store refuses is dropped, not the link.
		link.Title = nil
		created, err = s.repo.Create(ctx, link)
	}
	if err != nil {
		if errx.Is(err, errx.Conflict) {
			metrics.LinksCreatedTotal.WithLabelValues(metrics.ResultDuplicate).Inc()
			return Link{}, errx.E(op, errx.Conflict, ErrDuplicateURL)
		}
		metrics.LinksCreatedTotal.WithLabelValues(metrics.ResultError).Inc()
		return Link{}, errx.Wrap(op, err)
	}

	metrics.LinksCreatedTotal.WithLabelValues(metrics.ResultCreated).Inc()
	return created, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]Link, error) {
	const op = "links.service.List"

	if err := requireUser(op, userID); err != nil {
		return nil, err
	}

	out, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, errx.Wrap(op, err)
	}
	return out, nil
}

// MarkRead is idempotent; absent or foreign ids are not an error.
func (s *service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	const op = "links.service.MarkRead"

	if err := requireUser(op, userID); err != nil {
		return err
	}
	if id == uuid.Nil {
		return errx.E(op, errx.Invalid, errors.New("id is required"))
	}

	if err := s.repo.MarkRead(ctx, userID, id); err != nil {
		return errx.Wrap(op, err)
	}
	return nil
}

// Delete removes the link; absent or foreign ids are not an error.
func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const op = "links.service.Delete"

	if err := requireUser(op, userID); err != nil {
		return err
	}
	if id == uuid.Nil {
		return errx.E(op, errx.Invalid, errors.New("id is required"))
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return errx.Wrap(op, err)
	}
	return nil
}

// SetCategory assigns categoryID to the link, or clears it when nil. The link
// must belong to userID; otherwise nothing happens. The category must belong
// to userID too, or the call fails as Invalid.
func (s *service) SetCategory(ctx context.Context, userID, linkID uuid.UUID, categoryID *uuid.UUID) error {
	const op = "links.service.SetCategory"

	if err := requireUser(op, userID); err != nil {
		return err
	}
	if linkID == uuid.Nil {
		return errx.E(op, errx.Invalid, errors.New("link id is required"))
	}
	if categoryID != nil && *categoryID == uuid.Nil {
		categoryID = nil
	}

	if _, err := s.repo.SetCategory(ctx, userID, linkID, categoryID); err != nil {
		if errx.Is(err, errx.Invalid) {
			return errx.E(op, errx.Invalid, ErrUnknownCategory)
		}
		return errx.Wrap(op, err)
	}
	return nil
}

// Update applies a partial change. The bool is false when no owned link
// matched. A read link stays read whatever status is sent.
func (s *service) Update(ctx context.Context, userID, id uuid.UUID, req UpdateLinkRequest) (Link, bool, error) {
	const op = "links.service.Update"

	if err := requireUser(op, userID); err != nil {
		return Link{}, false, err
	}
	if id == uuid.Nil {
		return Link{}, false, errx.E(op, errx.Invalid, errors.New("id is required"))
	}

	var patch Patch
	if req.Status != nil {
		status, err := ParseStatus(*req.Status)
		if err != nil {
			return Link{}, false, errx.E(op, errx.Invalid, err)
		}
		patch.Status = &status
	}
	if req.URL != nil {
		if err := ValidateURL(*req.URL); err != nil {
			return Link{}, false, errx.E(op, errx.Invalid, err)
		}
		patch.URL = req.URL
	}
	if req.Title != nil {
		// A blank title clears it, as on create.
		patch.Title = normalizeTitle(req.Title)
		patch.ClearTitle = patch.Title == nil
	}

	updated, err := s.repo.Update(ctx, userID, id, patch)
	switch {
	case err == nil:
		return updated, true, nil
	case errx.Is(err, errx.NotFound):
		return Link{}, false, nil
	case errx.Is(err, errx.Conflict):
		return Link{}, false, errx.E(op, errx.Conflict, ErrDuplicateURL)
	default:
		return Link{}, false, errx.Wrap(op, err)
	}
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("url cannot be empty")
	}
	if !utf8.ValidString(rawURL) || strings.ContainsRune(rawURL, 0) {
		return errors.New("url must be valid text")
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("url too long (max %d characters)", MaxURLLength)
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid url format")
	}
	if parsedURL.Scheme == "" {
		return errors.New("url must include scheme (http or https)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("url scheme must be http or https")
	}
	if parsedURL.Host == "" {
		return errors.New("url must include host")
	}
	return nil
}

// normalizeTitle trims and truncates t, returning nil for blank input.
func normalizeTitle(t *string) *string {
	if t == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*t)
	if trimmed == "" {
		return nil
	}
	out := truncateTitle(trimmed)
	return &out
}

func truncateTitle(t string) string {
	if utf8.RuneCountInString(t) <= MaxTitleLength {
		return t
	}
	runes := []rune(t)
	return string(runes[:MaxTitleLength])
}

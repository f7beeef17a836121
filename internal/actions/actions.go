// Package actions implements the form procedures used by the page UI. Each
// procedure returns a Result instead of raising; FormHandler turns Results
// into redirects.
package actions

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sundayezeilo/readit/internal/auth"
	"github.com/sundayezeilo/readit/internal/categories"
	"github.com/sundayezeilo/readit/internal/errx"
	"github.com/sundayezeilo/readit/internal/invalidate"
	"github.com/sundayezeilo/readit/internal/links"
)

const (
	MsgDuplicateLink     = "Such article already saved"
	MsgDuplicateCategory = "Such category already exists"

	// HomePath is the view every procedure invalidates and redirects to.
	HomePath = "/"
)

type Kind uint8

const (
	OK Kind = iota
	Unauthenticated
	Invalid
	Conflict
	Failed
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "ok"
	case Unauthenticated:
		return "unauthenticated"
	case Invalid:
		return "invalid"
	case Conflict:
		return "conflict"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a procedure. Message is meant for the user and is
// empty for OK, Unauthenticated and Failed.
type Result struct {
	Kind    Kind
	Message string
}

func (r Result) OK() bool { return r.Kind == OK }

// Form is a flat key/value payload. url.Values satisfies it.
type Form interface {
	Get(key string) string
}

// Procedure is the signature shared by every form procedure.
type Procedure func(ctx context.Context, form Form) Result

// Procedures runs form submissions against the link and category services.
type Procedures struct {
	links      links.Service
	categories categories.Service
	notifier   invalidate.Notifier
	logger     *slog.Logger
}

// Config holds the collaborators for Procedures.
type Config struct {
	Links      links.Service
	Categories categories.Service
	Notifier   invalidate.Notifier
	Logger     *slog.Logger
}

// New creates Procedures. A nil Notifier logs signals only.
func New(cfg Config) *Procedures {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = invalidate.NewLogNotifier(logger)
	}
	return &Procedures{
		links:      cfg.Links,
		categories: cfg.Categories,
		notifier:   notifier,
		logger:     logger,
	}
}

// Table returns the procedures keyed by the names forms post to.
func (p *Procedures) Table() map[string]Procedure {
	return map[string]Procedure{
		"addLink":            p.AddLink,
		"deleteLink":         p.DeleteLink,
		"markAsRead":         p.MarkAsRead,
		"addCategory":        p.AddCategory,
		"deleteCategory":     p.DeleteCategory,
		"updateLinkCategory": p.UpdateLinkCategory,
	}
}

// AddLink saves form field "url".
func (p *Procedures) AddLink(ctx context.Context, form Form) Result {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return Result{Kind: Unauthenticated}
	}

	_, err := p.links.Create(ctx, userID, links.CreateLinkRequest{URL: form.Get("url")})
	return p.finish(ctx, "addLink", err, MsgDuplicateLink)
}

// DeleteLink removes the link in form field "id".
func (p *Procedures) DeleteLink(ctx context.Context, form Form) Result {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return Result{Kind: Unauthenticated}
	}
	id, res, ok := parseID(form, "id")
	if !ok {
		return res
	}

	return p.finish(ctx, "deleteLink", p.links.Delete(ctx, userID, id), "")
}

// MarkAsRead marks the link in form field "id" as read.
func (p *Procedures) MarkAsRead(ctx context.Context, form Form) Result {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return Result{Kind: Unauthenticated}
	}
	id, res, ok := parseID(form, "id")
	if !ok {
		return res
	}

	return p.finish(ctx, "markAsRead", p.links.MarkRead(ctx, userID, id), "")
}

// AddCategory creates a category named by form field "name". A "color"
// field, if present, is not read.
func (p *Procedures) AddCategory(ctx context.Context, form Form) Result {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return Result{Kind: Unauthenticated}
	}

	_, err := p.categories.Create(ctx, userID, form.Get("name"))
	return p.finish(ctx, "addCategory", err, MsgDuplicateCategory)
}

// DeleteCategory removes the category in form field "id".
func (p *Procedures) DeleteCategory(ctx context.Context, form Form) Result {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return Result{Kind: Unauthenticated}
	}
	id, res, ok := parseID(form, "id")
	if !ok {
		return res
	}

	return p.finish(ctx, "deleteCategory", p.categories.Delete(ctx, userID, id), "")
}

// UpdateLinkCategory sets the category of link "linkId" to "categoryId". An
// empty categoryId clears it. Only the caller's own links are touched.
func (p *Procedures) UpdateLinkCategory(ctx context.Context, form Form) Result {
	userID, ok := auth.UserID(ctx)
	if !ok {
		return Result{Kind: Unauthenticated}
	}
	linkID, res, ok := parseID(form, "linkId")
	if !ok {
		return res
	}

	var categoryID *uuid.UUID
	if raw := form.Get("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return Result{Kind: Invalid, Message: "categoryId must be a valid id"}
		}
		categoryID = &id
	}

	err := p.links.SetCategory(ctx, userID, linkID, categoryID)
	return p.finish(ctx, "updateLinkCategory", err, "")
}

func parseID(form Form, field string) (uuid.UUID, Result, bool) {
	raw := form.Get(field)
	if raw == "" {
		return uuid.Nil, Result{Kind: Invalid, Message: field + " is required"}, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, Result{Kind: Invalid, Message: field + " must be a valid id"}, false
	}
	return id, Result{}, true
}

// finish maps a service error to a Result and signals invalidation on success.
func (p *Procedures) finish(ctx context.Context, name string, err error, conflictMsg string) Result {
	if err == nil {
		p.notifier.Invalidate(ctx, HomePath)
		return Result{Kind: OK}
	}

	switch errx.KindOf(err) {
	case errx.Conflict:
		msg := conflictMsg
		if msg == "" {
			msg = errx.Cause(err).Error()
		}
		return Result{Kind: Conflict, Message: msg}

	case errx.Invalid:
		return Result{Kind: Invalid, Message: errx.Cause(err).Error()}

	case errx.Unauthenticated:
		return Result{Kind: Unauthenticated}

	default:
		p.logger.ErrorContext(ctx, "procedure failed",
			"procedure", name,
			"error", err.Error(),
			"error_kind", errx.KindOf(err),
			"operation", errx.OpOf(err),
		)
		return Result{Kind: Failed}
	}
}

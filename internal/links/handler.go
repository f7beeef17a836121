package links

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sundayezeilo/readit/internal/auth"
	"github.com/sundayezeilo/readit/internal/errx"
	"github.com/sundayezeilo/readit/internal/httpx"
)

// HTTPCreateLinkRequest represents the JSON request body for saving a link.
type HTTPCreateLinkRequest struct {
	URL   string  `json:"url"`
	Title *string `json:"title,omitempty"`
}

// HTTPUpdateLinkRequest represents the JSON body for PATCH /links/{id}.
type HTTPUpdateLinkRequest struct {
	Status *string `json:"status,omitempty"`
	Title  *string `json:"title,omitempty"`
	URL    *string `json:"url,omitempty"`
}

// HTTPSetCategoryRequest is the body for PUT /links/{id}/category. A null
// category_id clears the assignment.
type HTTPSetCategoryRequest struct {
	CategoryID *string `json:"category_id"`
}

// CategoryRefResponse is the category embedded in a listed link.
type CategoryRefResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// LinkResponse is the JSON form of a Link.
type LinkResponse struct {
	ID         string               `json:"id"`
	URL        string               `json:"url"`
	Title      *string              `json:"title"`
	Status     Status               `json:"status"`
	CategoryID *string              `json:"category_id"`
	Category   *CategoryRefResponse `json:"category,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

func toResponse(l Link) LinkResponse {
	resp := LinkResponse{
		ID:        l.ID.String(),
		URL:       l.URL,
		Title:     l.Title,
		Status:    l.Status,
		CreatedAt: l.CreatedAt,
	}
	if l.CategoryID != nil {
		id := l.CategoryID.String()
		resp.CategoryID = &id
	}
	if l.Category != nil {
		resp.Category = &CategoryRefResponse{
			ID:    l.Category.ID.String(),
			Name:  l.Category.Name,
			Color: l.Category.Color,
		}
	}
	return resp
}

// Handler serves the link JSON API.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service: cfg.Service,
		logger:  logger,
	}
}

// Register mounts the link routes on mux under prefix.
func (h *Handler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/links", h.List)
	mux.HandleFunc("POST "+prefix+"/links", h.Create)
	mux.HandleFunc("PATCH "+prefix+"/links/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/links/{id}", h.Delete)
	mux.HandleFunc("PUT "+prefix+"/links/{id}/category", h.SetCategory)
}

// List handles GET /links. Only unread links are returned unless the status
// query parameter says otherwise ("read", "unread" or "all").
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := httpx.RequestLogger(h.logger, r)

	userID, ok := auth.UserID(ctx)
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		httpx.WriteServiceError(w, errx.E("links.handler.List", errx.Invalid, err), "")
		return
	}

	list, err := h.service.List(ctx, userID, filter)
	if err != nil {
		h.handleError(ctx, w, logger, err, "Unable to load links right now")
		return
	}

	out := make([]LinkResponse, 0, len(list))
	for _, l := range list {
		out = append(out, toResponse(l))
	}
	httpx.WriteData(w, http.StatusOK, out)
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	var verrs httpx.ValidationErrors
	var filter ListFilter
	q := r.URL.Query()

	switch raw := q.Get("status"); raw {
	case "":
		unread := StatusUnread
		filter.Status = &unread
	case "all":
	default:
		status, err := ParseStatus(raw)
		if err != nil {
			verrs.Add("status", "must be one of: unread, read, all")
		} else {
			filter.Status = &status
		}
	}

	if raw := q.Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			verrs.Add("category_id", "must be a valid UUID")
		} else {
			filter.CategoryID = &id
		}
	}

	return filter, verrs.Err()
}

// Create handles POST /links.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := httpx.RequestLogger(h.logger, r)

	userID, ok := auth.UserID(ctx)
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}

	req, err := httpx.DecodeJSON[HTTPCreateLinkRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	var verrs httpx.ValidationErrors
	if req.URL == "" {
		verrs.Add("url", "is required")
	} else if err := ValidateURL(req.URL); err != nil {
		verrs.Add("url", err.Error())
	}
	if err := verrs.Err(); err != nil {
		logger.WarnContext(ctx, "request validation failed", "error", err.Error())
		httpx.WriteServiceError(w, errx.E("links.handler.Create", errx.Invalid, err), "")
		return
	}

	link, err := h.service.Create(ctx, userID, CreateLinkRequest{
		URL:   req.URL,
		Title: req.Title,
	})
	if err != nil {
		h.handleError(ctx, w, logger, err, "Unable to save link right now")
		return
	}

	logger.InfoContext(ctx, "link saved",
		"user_id", userID.String(),
		"link_id", link.ID.String(),
		"has_title", link.Title != nil,
	)
	httpx.WriteData(w, http.StatusCreated, toResponse(link))
}

// Update handles PATCH /links/{id}. A link the caller does not own answers
// 200 with null data.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := httpx.RequestLogger(h.logger, r)

	userID, ok := auth.UserID(ctx)
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}

	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	req, err := httpx.DecodeJSON[HTTPUpdateLinkRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	var verrs httpx.ValidationErrors
	if req.Status != nil {
		if _, err := ParseStatus(*req.Status); err != nil {
			verrs.Add("status", err.Error())
		}
	}
	if req.URL != nil {
		if err := ValidateURL(*req.URL); err != nil {
			verrs.Add("url", err.Error())
		}
	}
	if err := verrs.Err(); err != nil {
		logger.WarnContext(ctx, "request validation failed", "error", err.Error())
		httpx.WriteServiceError(w, errx.E("links.handler.Update", errx.Invalid, err), "")
		return
	}

	link, found, err := h.service.Update(ctx, userID, id, UpdateLinkRequest{
		Status: req.Status,
		Title:  req.Title,
		URL:    req.URL,
	})
	if err != nil {
		h.handleError(ctx, w, logger, err, "Unable to update link right now")
		return
	}
	if !found {
		httpx.WriteData(w, http.StatusOK, nil)
		return
	}

	logger.InfoContext(ctx, "link updated",
		"user_id", userID.String(),
		"link_id", link.ID.String(),
	)
	httpx.WriteData(w, http.StatusOK, toResponse(link))
}

// Delete handles DELETE /links/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := httpx.RequestLogger(h.logger, r)

	userID, ok := auth.UserID(ctx)
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}

	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	if err := h.service.Delete(ctx, userID, id); err != nil {
		h.handleError(ctx, w, logger, err, "Unable to delete link right now")
		return
	}

	logger.InfoContext(ctx, "link deleted",
		"user_id", userID.String(),
		"link_id", id.String(),
	)
	w.WriteHeader(http.StatusNoContent)
}

// SetCategory handles PUT /links/{id}/category.
func (h *Handler) SetCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := httpx.RequestLogger(h.logger, r)

	userID, ok := auth.UserID(ctx)
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}

	id, err := httpx.PathUUID(r, "id")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	req, err := httpx.DecodeJSON[HTTPSetCategoryRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	var categoryID *uuid.UUID
	if req.CategoryID != nil && *req.CategoryID != "" {
		parsed, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			var verrs httpx.ValidationErrors
			verrs.Add("category_id", "must be a valid UUID or null")
			httpx.WriteServiceError(w, errx.E("links.handler.SetCategory", errx.Invalid, verrs), "")
			return
		}
		categoryID = &parsed
	}

	if err := h.service.SetCategory(ctx, userID, id, categoryID); err != nil {
		h.handleError(ctx, w, logger, err, "Unable to update link right now")
		return
	}

	logger.InfoContext(ctx, "link category set",
		"user_id", userID.String(),
		"link_id", id.String(),
		"cleared", categoryID == nil,
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	kind := errx.KindOf(err)
	attrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	}

	switch kind {
	case errx.Invalid, errx.Conflict, errx.NotFound, errx.Unauthenticated:
		logger.WarnContext(ctx, "link request rejected", attrs...)
	default:
		logger.ErrorContext(ctx, "link request failed", attrs...)
	}
	httpx.WriteServiceError(w, err, fallback)
}

package categories

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sundayezeilo/readit/internal/auth"
	"github.com/sundayezeilo/readit/internal/errx"
	"github.com/sundayezeilo/readit/internal/httpx"
)

// HTTPCreateCategoryRequest is the JSON body for POST /categories. Color is
// accepted so clients may send it, and then ignored.
type HTTPCreateCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// CategoryResponse is the JSON form of a Category.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func toResponse(c Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
	}
}

// Handler serves the category JSON API.
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

// Register mounts the category routes on mux under prefix.
func (h *Handler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/categories", h.List)
	mux.HandleFunc("POST "+prefix+"/categories", h.Create)
	mux.HandleFunc("GET "+prefix+"/categories/colors", h.Colors)
	mux.HandleFunc("DELETE "+prefix+"/categories/{id}", h.Delete)
}

// Colors handles GET /categories/colors.
func (h *Handler) Colors(w http.ResponseWriter, r *http.Request) {
	httpx.WriteData(w, http.StatusOK, h.service.Colors())
}

// List handles GET /categories.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := auth.UserID(ctx)
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}

	cats, err := h.service.List(ctx, userID)
	if err != nil {
		h.handleError(ctx, w, httpx.RequestLogger(h.logger, r), err, "Unable to load categories right now")
		return
	}

	out := make([]CategoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, toResponse(c))
	}
	httpx.WriteData(w, http.StatusOK, out)
}

// Create handles POST /categories.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := httpx.RequestLogger(h.logger, r)

	userID, ok := auth.UserID(ctx)
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}

	req, err := httpx.DecodeJSON[HTTPCreateCategoryRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	var verrs httpx.ValidationErrors
	if req.Name == "" {
		verrs.Add("name", "is required")
	}
	if err := verrs.Err(); err != nil {
		httpx.WriteServiceError(w, errx.E("categories.handler.Create", errx.Invalid, err), "")
		return
	}

	created, err := h.service.Create(ctx, userID, req.Name)
	if err != nil {
		h.handleError(ctx, w, logger, err, "Unable to create category right now")
		return
	}

	logger.InfoContext(ctx, "category created",
		"user_id", userID.String(),
		"category_id", created.ID.String(),
	)
	httpx.WriteData(w, http.StatusCreated, toResponse(created))
}

// Delete handles DELETE /categories/{id}.
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
		h.handleError(ctx, w, logger, err, "Unable to delete category right now")
		return
	}

	logger.InfoContext(ctx, "category deleted",
		"user_id", userID.String(),
		"category_id", id.String(),
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
		logger.WarnContext(ctx, "category request rejected", attrs...)
	default:
		logger.ErrorContext(ctx, "category request failed", attrs...)
	}
	httpx.WriteServiceError(w, err, fallback)
}

package actions

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/sundayezeilo/readit/internal/httpx"
)

// MaxFormSize bounds a form-encoded procedure body.
const MaxFormSize = 64 << 10

// SessionEnder clears the caller's session.
type SessionEnder interface {
	SignOut(w http.ResponseWriter)
}

// FormHandler serves POST /actions/{name} for browser form submissions.
type FormHandler struct {
	table    map[string]Procedure
	session  SessionEnder
	loginURL string
	logger   *slog.Logger
}

// FormHandlerConfig holds configuration for the form handler.
type FormHandlerConfig struct {
	Procedures *Procedures
	Session    SessionEnder
	LoginURL   string
	Logger     *slog.Logger
}

// NewFormHandler creates a FormHandler.
func NewFormHandler(cfg FormHandlerConfig) *FormHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loginURL := cfg.LoginURL
	if loginURL == "" {
		loginURL = "/login"
	}
	return &FormHandler{
		table:    cfg.Procedures.Table(),
		session:  cfg.Session,
		loginURL: loginURL,
		logger:   logger,
	}
}

// Register mounts the procedure route on mux under prefix.
func (h *FormHandler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("POST "+prefix+"/signOut", h.SignOut)
	mux.HandleFunc("POST "+prefix+"/{name}", h.Serve)
}

// Serve runs the named procedure and redirects back to the home view.
func (h *FormHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")

	proc, ok := h.table[name]
	if !ok {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "unknown procedure", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxFormSize)
	if err := r.ParseForm(); err != nil {
		httpx.RequestLogger(h.logger, r).WarnContext(ctx, "failed to parse form",
			"procedure", name,
			"error", err.Error(),
		)
		http.Redirect(w, r, RedirectTarget(Result{Kind: Invalid, Message: "Invalid form submission"}), http.StatusSeeOther)
		return
	}

	result := proc(ctx, r.PostForm)

	httpx.RequestLogger(h.logger, r).DebugContext(ctx, "procedure finished",
		"procedure", name,
		"result", result.Kind.String(),
	)
	http.Redirect(w, r, RedirectTarget(result), http.StatusSeeOther)
}

// SignOut clears the session cookie and sends the browser to the login page.
func (h *FormHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if h.session != nil {
		h.session.SignOut(w)
	}
	http.Redirect(w, r, h.loginURL, http.StatusSeeOther)
}

// RedirectTarget is where the browser goes after a procedure. Results with a
// message carry it in the error query parameter.
func RedirectTarget(res Result) string {
	if res.Message == "" || res.Kind == OK {
		return HomePath
	}
	return HomePath + "?" + url.Values{"error": {res.Message}}.Encode()
}

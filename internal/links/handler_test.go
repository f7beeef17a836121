package links

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sundayezeilo/readit/internal/auth"
	"github.com/sundayezeilo/readit/internal/errx"
)

type apiFixture struct {
	repo *memRepository
	svc  Service
	mux  *http.ServeMux
}

func newAPIFixture(titles TitleResolver) *apiFixture {
	repo := newMemRepository()
	svc := NewService(repo, &ServiceConfig{TitleResolver: titles})
	h := NewHandler(HandlerConfig{
		Service: svc,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	mux := http.NewServeMux()
	h.Register(mux, "/api/v1")
	return &apiFixture{repo: repo, svc: svc, mux: mux}
}

func (f *apiFixture) do(method, target, body string, userID uuid.UUID) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if userID != uuid.Nil {
		req = req.WithContext(auth.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env dataEnvelope[T]
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return env.Data
}

func TestHandlerCreate(t *testing.T) {
	userID := uuid.New()

	t.Run("created with resolved title", func(t *testing.T) {
		f := newAPIFixture(&stubTitles{title: "Example", ok: true})

		rec := f.do(http.MethodPost, "/api/v1/links", `{"url":"https://a.example"}`, userID)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201; body=%s", rec.Code, rec.Body.String())
		}
		got := decodeData[LinkResponse](t, rec)
		if got.URL != "https://a.example" || got.Status != StatusUnread {
			t.Errorf("data = %+v", got)
		}
		if got.Title == nil || *got.Title != "Example" {
			t.Errorf("title = %v", got.Title)
		}
	})

	t.Run("absent title serializes as null", func(t *testing.T) {
		f := newAPIFixture(nil)

		rec := f.do(http.MethodPost, "/api/v1/links", `{"url":"https://a.example"}`, userID)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"title":null`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("extension title is kept", func(t *testing.T) {
		titles := &stubTitles{title: "Fetched", ok: true}
		f := newAPIFixture(titles)

		rec := f.do(http.MethodPost, "/api/v1/links", `{"url":"https://a.example","title":"From tab"}`, userID)
		got := decodeData[LinkResponse](t, rec)
		if got.Title == nil || *got.Title != "From tab" {
			t.Errorf("title = %v", got.Title)
		}
		if titles.calls != 0 {
			t.Errorf("lookups = %d, want 0", titles.calls)
		}
	})

	t.Run("duplicate is 409", func(t *testing.T) {
		f := newAPIFixture(nil)
		_ = f.do(http.MethodPost, "/api/v1/links", `{"url":"https://a.example"}`, userID)

		rec := f.do(http.MethodPost, "/api/v1/links", `{"url":"https://a.example"}`, userID)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
		if len(f.repo.rows) != 1 {
			t.Errorf("rows = %d, want 1", len(f.repo.rows))
		}
	})

	validation := []struct {
		name  string
		body  string
		field string
	}{
		{"missing url", `{}`, "url"},
		{"relative url", `{"url":"/path"}`, "url"},
		{"bad scheme", `{"url":"ftp://a.example"}`, "url"},
	}
	for _, tt := range validation {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(nil)
			rec := f.do(http.MethodPost, "/api/v1/links", tt.body, userID)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), `"field":"`+tt.field+`"`) {
				t.Errorf("body = %s", rec.Body.String())
			}
		})
	}

	malformed := []struct {
		name string
		body string
	}{
		{"truncated", `{"url":`},
		{"not json", `url=https://a.example`},
		{"unknown field", `{"url":"https://a.example","extra":1}`},
		{"wrong type", `{"url":42}`},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			f := newAPIFixture(nil)
			rec := f.do(http.MethodPost, "/api/v1/links", tt.body, userID)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}

	t.Run("anonymous is 401", func(t *testing.T) {
		f := newAPIFixture(nil)
		rec := f.do(http.MethodPost, "/api/v1/links", `{"url":"https://a.example"}`, uuid.Nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		if len(f.repo.rows) != 0 {
			t.Error("anonymous request reached the store")
		}
	})

	t.Run("storage failure is generic", func(t *testing.T) {
		f := newAPIFixture(nil)
		f.repo.failWith = errx.E("repo.Create", errx.Unknown, errors.New("pq: secret detail"))

		rec := f.do(http.MethodPost, "/api/v1/links", `{"url":"https://a.example"}`, userID)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "secret detail") {
			t.Error("storage error detail leaked")
		}
	})
}

func TestHandlerList(t *testing.T) {
	userID := uuid.New()
	f := newAPIFixture(nil)
	ctx := context.Background()

	a, _ := f.svc.Create(ctx, userID, CreateLinkRequest{URL: "https://a.example"})
	b, _ := f.svc.Create(ctx, userID, CreateLinkRequest{URL: "https://b.example"})
	_, _ = f.svc.Create(ctx, uuid.New(), CreateLinkRequest{URL: "https://c.example"})
	_ = f.svc.MarkRead(ctx, userID, a.ID)
	cat := f.repo.addCategory(userID, "Go", "#ef4444")
	_ = f.svc.SetCategory(ctx, userID, b.ID, &cat)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"default unread", "", []string{b.ID.String()}},
		{"read", "?status=read", []string{a.ID.String()}},
		{"all newest first", "?status=all", []string{b.ID.String(), a.ID.String()}},
		{"by category", "?status=all&category_id=" + cat.String(), []string{b.ID.String()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodGet, "/api/v1/links"+tt.query, "", userID)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			got := decodeData[[]LinkResponse](t, rec)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d links, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("links[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}

	t.Run("category embedded", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/v1/links", "", userID)
		got := decodeData[[]LinkResponse](t, rec)
		if got[0].Category == nil || got[0].Category.Color != "#ef4444" {
			t.Errorf("category = %+v", got[0].Category)
		}
		if got[0].CategoryID == nil || *got[0].CategoryID != cat.String() {
			t.Errorf("category_id = %v", got[0].CategoryID)
		}
	})

	t.Run("bad filters", func(t *testing.T) {
		for _, q := range []string{"?status=archived", "?category_id=nope"} {
			rec := f.do(http.MethodGet, "/api/v1/links"+q, "", userID)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: status = %d, want 400", q, rec.Code)
			}
		}
	})

	t.Run("anonymous is 401", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/v1/links", "", uuid.Nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestHandlerUpdate(t *testing.T) {
	owner := uuid.New()
	f := newAPIFixture(nil)
	link, _ := f.svc.Create(context.Background(), owner, CreateLinkRequest{URL: "https://a.example"})
	target := "/api/v1/links/" + link.ID.String()

	t.Run("owner updates", func(t *testing.T) {
		rec := f.do(http.MethodPatch, target, `{"status":"read","title":"T"}`, owner)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; body=%s", rec.Code, rec.Body.String())
		}
		got := decodeData[*LinkResponse](t, rec)
		if got == nil || got.Status != StatusRead || got.Title == nil || *got.Title != "T" {
			t.Errorf("data = %+v", got)
		}
	})

	t.Run("foreign gets null data", func(t *testing.T) {
		rec := f.do(http.MethodPatch, target, `{"title":"hijack"}`, uuid.New())
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != `{"data":null}` {
			t.Errorf("body = %s", got)
		}
		if *f.repo.rows[0].Title != "T" {
			t.Error("foreign PATCH changed the link")
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		rec := f.do(http.MethodPatch, target, `{"status":"archived"}`, owner)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"field":"status"`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("bad id", func(t *testing.T) {
		rec := f.do(http.MethodPatch, "/api/v1/links/123", `{"title":"x"}`, owner)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerDelete(t *testing.T) {
	owner := uuid.New()
	f := newAPIFixture(nil)
	link, _ := f.svc.Create(context.Background(), owner, CreateLinkRequest{URL: "https://a.example"})
	target := "/api/v1/links/" + link.ID.String()

	rec := f.do(http.MethodDelete, target, "", uuid.New())
	if rec.Code != http.StatusNoContent {
		t.Fatalf("foreign status = %d, want 204", rec.Code)
	}
	if len(f.repo.rows) != 1 {
		t.Fatal("foreign DELETE removed the link")
	}

	rec = f.do(http.MethodDelete, target, "", owner)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(f.repo.rows) != 0 {
		t.Error("owner DELETE did not remove the link")
	}
}

func TestHandlerSetCategory(t *testing.T) {
	owner := uuid.New()
	f := newAPIFixture(nil)
	link, _ := f.svc.Create(context.Background(), owner, CreateLinkRequest{URL: "https://a.example"})
	cat := f.repo.addCategory(owner, "Go", "#ef4444")
	foreign := f.repo.addCategory(uuid.New(), "Go", "#ef4444")
	target := "/api/v1/links/" + link.ID.String() + "/category"

	rec := f.do(http.MethodPut, target, `{"category_id":"`+cat.String()+`"}`, owner)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("assign status = %d; body=%s", rec.Code, rec.Body.String())
	}
	if got := f.repo.rows[0].CategoryID; got == nil || *got != cat {
		t.Errorf("CategoryID = %v, want %v", got, cat)
	}

	rec = f.do(http.MethodPut, target, `{"category_id":null}`, owner)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", rec.Code)
	}
	if f.repo.rows[0].CategoryID != nil {
		t.Error("category not cleared")
	}

	rec = f.do(http.MethodPut, target, `{"category_id":"`+foreign.String()+`"}`, owner)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("foreign category status = %d, want 400", rec.Code)
	}

	rec = f.do(http.MethodPut, target, `{"category_id":"nope"}`, owner)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad uuid status = %d, want 400", rec.Code)
	}
}

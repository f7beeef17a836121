package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestResolver(t *testing.T, now time.Time) *JWTResolver {
	t.Helper()
	r, err := NewJWTResolver(Config{
		Secret: testSecret,
		Now:    func() time.Time { return now },
	})
	require.NoError(t, err)
	return r
}

func TestNewJWTResolver(t *testing.T) {
	t.Run("rejects short secret", func(t *testing.T) {
		_, err := NewJWTResolver(Config{Secret: "short"})
		require.Error(t, err)
	})

	t.Run("applies defaults", func(t *testing.T) {
		r, err := NewJWTResolver(Config{Secret: testSecret})
		require.NoError(t, err)
		assert.Equal(t, DefaultCookieName, r.CookieName())
		assert.Equal(t, DefaultIssuer, r.issuer)
	})
}

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := newTestResolver(t, now)
	userID := uuid.New()

	token, err := r.Issue(userID, time.Hour)
	require.NoError(t, err)

	got, err := r.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestIssue_RejectsBadInput(t *testing.T) {
	r := newTestResolver(t, time.Now())

	_, err := r.Issue(uuid.Nil, time.Hour)
	assert.Error(t, err)

	_, err = r.Issue(uuid.New(), 0)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	issuer := newTestResolver(t, issuedAt)
	token, err := issuer.Issue(uuid.New(), time.Minute)
	require.NoError(t, err)

	later := newTestResolver(t, issuedAt.Add(time.Hour))
	_, err = later.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_WrongSecret(t *testing.T) {
	now := time.Now()
	r := newTestResolver(t, now)
	token, err := r.Issue(uuid.New(), time.Hour)
	require.NoError(t, err)

	other, err := NewJWTResolver(Config{Secret: strings.Repeat("x", MinSecretLength)})
	require.NoError(t, err)

	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	r := newTestResolver(t, time.Now())

	claims := Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DefaultIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = r.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	r := newTestResolver(t, time.Now())
	_, err := r.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestResolve(t *testing.T) {
	r := newTestResolver(t, time.Now())
	userID := uuid.New()
	token, err := r.Issue(userID, time.Hour)
	require.NoError(t, err)

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})

		got, err := r.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		got, err := r.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})

	t.Run("none", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := r.Resolve(req)
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("stale cookie falls back to bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "expired-or-garbage"})
		req.Header.Set("Authorization", "Bearer "+token)

		got, err := r.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})

	t.Run("stale cookie without bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "garbage"})

		_, err := r.Resolve(req)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("cookie wins over bearer", func(t *testing.T) {
		other := uuid.New()
		otherToken, err := r.Issue(other, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})
		req.Header.Set("Authorization", "Bearer "+otherToken)

		got, err := r.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	})

	t.Run("non-bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		_, err := r.Resolve(req)
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestSignOut(t *testing.T) {
	r := newTestResolver(t, time.Now())

	rec := httptest.NewRecorder()
	r.SignOut(rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, DefaultCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Less(t, cookies[0].MaxAge, 0)
}

// Package auth resolves the caller's user id from a signed session token.
//
// Tokens are HS256 JWTs carrying the user id as a custom claim. The browser
// page sends them as a cookie and the extension or API clients may send them
// as a bearer token; either works for every route.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultCookieName = "readit_session"
	DefaultIssuer     = "readit"
	MinSecretLength   = 32
)

var (
	ErrNoSession    = errors.New("no session token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Resolver yields the caller's user id for a request.
type Resolver interface {
	Resolve(r *http.Request) (uuid.UUID, error)
}

// Claims is the session token payload.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTResolver issues and verifies session tokens.
type JWTResolver struct {
	secret     []byte
	cookieName string
	issuer     string
	now        func() time.Time
}

// Config holds configuration for the resolver.
type Config struct {
	Secret     string
	CookieName string
	Issuer     string
	Now        func() time.Time
}

// NewJWTResolver validates cfg and returns a resolver.
func NewJWTResolver(cfg Config) (*JWTResolver, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretLength)
	}

	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &JWTResolver{
		secret:     []byte(cfg.Secret),
		cookieName: cookieName,
		issuer:     issuer,
		now:        now,
	}, nil
}

// CookieName returns the session cookie name.
func (j *JWTResolver) CookieName() string { return j.cookieName }

// Issue signs a session token for userID valid for ttl.
func (j *JWTResolver) Issue(userID uuid.UUID, ttl time.Duration) (string, error) {
	if userID == uuid.Nil {
		return "", errors.New("user id cannot be nil")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}

	now := j.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// Parse verifies tokenStr and returns the user id it carries.
func (j *JWTResolver) Parse(tokenStr string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) {
			return j.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return uuid.Nil, ErrInvalidToken
	}
	return claims.UserID, nil
}

// Resolve reads the session cookie, falling back to an Authorization bearer
// token when the cookie is absent or does not verify.
func (j *JWTResolver) Resolve(r *http.Request) (uuid.UUID, error) {
	err := ErrNoSession
	for _, tokenStr := range []string{j.cookieToken(r), bearerToken(r)} {
		if tokenStr == "" {
			continue
		}
		var userID uuid.UUID
		if userID, err = j.Parse(tokenStr); err == nil {
			return userID, nil
		}
	}
	return uuid.Nil, err
}

func (j *JWTResolver) cookieToken(r *http.Request) string {
	if c, err := r.Cookie(j.cookieName); err == nil {
		return c.Value
	}
	return ""
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// SignOut expires the session cookie.
func (j *JWTResolver) SignOut(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     j.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

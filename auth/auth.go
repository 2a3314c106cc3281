// Package auth implements the password gate in front of the quote builder and
// the signed cookie that ties a browser to its quote session.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type ctxKey string

const (
	sessionCookieName = "session"
	sessionIDCtxKey   = ctxKey("sessionID")
	sessionLifetime   = 14 * 24 * time.Hour
)

// Gate checks the shared password and signs session cookies.
type Gate struct {
	digest []byte // sha256 of the plaintext password, nil when unset
	hash   []byte // bcrypt hash, takes precedence over digest
	secret []byte
}

// NewGate configures the gate. passwordHash is a bcrypt hash; when both
// password and passwordHash are empty the gate is open.
func NewGate(password, passwordHash, secret string) *Gate {
	g := &Gate{secret: []byte(secret)}
	if passwordHash != "" {
		g.hash = []byte(passwordHash)
	} else if password != "" {
		sum := sha256.Sum256([]byte(password))
		g.digest = sum[:]
	}
	return g
}

// Open reports whether no password is configured.
func (g *Gate) Open() bool { return g.hash == nil && g.digest == nil }

// Check compares submitted with the configured password in constant time.
// The submitted value is not retained.
func (g *Gate) Check(submitted string) bool {
	switch {
	case g.hash != nil:
		return bcrypt.CompareHashAndPassword(g.hash, []byte(submitted)) == nil
	case g.digest != nil:
		sum := sha256.Sum256([]byte(submitted))
		return subtle.ConstantTimeCompare(sum[:], g.digest) == 1
	}
	return true
}

func (g *Gate) sign(value string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSession sets a signed cookie carrying the session id.
func (g *Gate) CreateSession(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID + "." + g.sign(sessionID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionLifetime),
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie and returns the session id.
func (g *Gate) ParseSession(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	id, sig, ok := strings.Cut(c.Value, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(g.sign(id))) {
		return "", false
	}
	return id, true
}

// WithSessionID stores the session id in ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDCtxKey, id)
}

// SessionIDFromContext extracts the session id.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDCtxKey).(string)
	return id, ok && id != ""
}

// Middleware attaches the session id to the request context if the cookie is
// valid.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := g.ParseSession(r); ok {
			r = r.WithContext(WithSessionID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// WantsJSON reports whether the client asked for JSON rather than HTML.
func WantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// Deny answers an unauthenticated request: 401 JSON for API clients, a
// redirect to /login for browsers.
func Deny(w http.ResponseWriter, r *http.Request) {
	if WantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"unauthorized"}`)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

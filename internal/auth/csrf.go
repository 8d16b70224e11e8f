package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// CSRF cookie and header names
const (
	CSRFCookie = "csrf_token"
	CSRFHeader = "X-CSRF-Token"
)

// CSRF implements double-submit protection: the client echoes the token it
// got from /api/csrftoken in a header, and the cookie carries the same token
// signed with the server secret.
type CSRF struct {
	secret []byte
	secure bool
}

// NewCSRF builds a CSRF; secret must not be empty
func NewCSRF(secret string, secure bool) (*CSRF, error) {
	if secret == "" {
		return nil, fmt.Errorf("csrf secret is not configured")
	}
	return &CSRF{secret: []byte(secret), secure: secure}, nil
}

// Issue generates a token, sets the signed cookie and returns the token
func (c *CSRF) Issue(w http.ResponseWriter) string {
	token := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookie,
		Value:    token + "." + c.sign(token),
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return token
}

// Validate checks the header token against the signed cookie
func (c *CSRF) Validate(r *http.Request) error {
	header := r.Header.Get(CSRFHeader)
	if header == "" {
		return fmt.Errorf("missing %s header", CSRFHeader)
	}
	cookie, err := r.Cookie(CSRFCookie)
	if err != nil {
		return fmt.Errorf("missing %s cookie", CSRFCookie)
	}
	token, sig, ok := strings.Cut(cookie.Value, ".")
	if !ok {
		return fmt.Errorf("malformed %s cookie", CSRFCookie)
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(token))) {
		return fmt.Errorf("%s cookie signature mismatch", CSRFCookie)
	}
	if !hmac.Equal([]byte(header), []byte(token)) {
		return fmt.Errorf("%s header does not match cookie", CSRFHeader)
	}
	return nil
}

func (c *CSRF) sign(token string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

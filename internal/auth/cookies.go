package auth

import (
	"net/http"
	"strings"
	"time"
)

// AccessCookie holds "Bearer <jwt>"
const AccessCookie = "access_token"

const bearerPrefix = "Bearer "

// SetAccessCookie stores a freshly issued token
func SetAccessCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    bearerPrefix + token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAccessCookie expires the access cookie
func ClearAccessCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
	})
}

// AccessToken extracts the raw jwt from the request cookie
func AccessToken(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(AccessCookie)
	if err != nil {
		return "", false
	}
	token, ok := strings.CutPrefix(cookie.Value, bearerPrefix)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Cookie names.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
	SessionCookie      = "sid"
)

var ErrBadSignature = errors.New("cookie signature mismatch")

// TokenCookie builds an auth cookie: HttpOnly, Secure, SameSite=Strict.
func TokenCookie(name, value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
	if ttl > 0 {
		c.MaxAge = int(ttl / time.Second)
		c.Expires = time.Now().Add(ttl)
	}
	return c
}

// ExpiredCookie clears a cookie set by TokenCookie.
func ExpiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

// HashRefreshToken returns the hex SHA-256 of a refresh token. Only the hash
// is stored on the user record.
func HashRefreshToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// RefreshTokenMatches compares a presented token against the stored hash in
// constant time. An empty stored hash (revoked) never matches.
func RefreshTokenMatches(token, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashRefreshToken(token)), []byte(storedHash)) == 1
}

// SignValue appends an HMAC of value so the cookie cannot be forged.
func SignValue(value, secret string) string {
	return value + "." + mac(value, secret)
}

// VerifySignedValue returns the original value of a SignValue result.
func VerifySignedValue(signed, secret string) (string, error) {
	idx := strings.LastIndex(signed, ".")
	if idx <= 0 {
		return "", ErrBadSignature
	}
	value, sig := signed[:idx], signed[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(mac(value, secret))) {
		return "", ErrBadSignature
	}
	return value, nil
}

func mac(value, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	m.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(m.Sum(nil))
}

// SanitizeHeaders removes sensitive headers before they are logged.
func SanitizeHeaders(headers http.Header) http.Header {
	clean := headers.Clone()
	for _, header := range []string{"Authorization", "Cookie", "Set-Cookie", "X-CSRF-Token"} {
		clean.Del(header)
	}
	return clean
}

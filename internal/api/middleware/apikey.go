// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/response"
)

// timeTokenTTL bounds how long a generated time token stays valid. Trigger
// invocations are near-instant; a short window limits replay.
const timeTokenTTL = 5 * time.Minute

// APIKeyMiddleware authenticates internal endpoints (the due-processing
// trigger) with a shared secret, distinct from normal user sessions.
//
// The caller must present the configured key, either in X-API-Key or as an
// Authorization bearer token, plus a fresh X-Time-Token generated from the
// same key (see GenerateTimeToken). The time token is a fernet token signed
// with a key derived from the shared secret, so possessing an old request
// capture is not enough to re-trigger processing.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expectedKey := os.Getenv("INTERNAL_API_KEY")
		if expectedKey == "" {
			response.RespondError(w, http.StatusInternalServerError, "internal error", "Authentication not loaded")
			return
		}

		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			apiKey = bearerToken(r)
		}
		if apiKey == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expectedKey)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		timeToken := r.Header.Get("X-Time-Token")
		if timeToken == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing Time token")
			return
		}
		if !verifyTimeToken(expectedKey, timeToken) {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Time token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GenerateTimeToken creates a short-lived token proving possession of the
// shared secret at generation time. Exposed for callers scripting the trigger.
func GenerateTimeToken(apiKey string) string {
	key := fernetKey(apiKey)
	token, err := fernet.EncryptAndSign([]byte("trigger"), key)
	if err != nil {
		return ""
	}
	return string(token)
}

// verifyTimeToken checks the token's signature and age against the shared secret.
func verifyTimeToken(apiKey, token string) bool {
	key := fernetKey(apiKey)
	msg := fernet.VerifyAndDecrypt([]byte(token), timeTokenTTL, []*fernet.Key{key})
	return msg != nil
}

// fernetKey derives a fernet key from the shared secret.
func fernetKey(apiKey string) *fernet.Key {
	sum := sha256.Sum256([]byte(apiKey))
	key := fernet.Key(sum)
	return &key
}

// bearerToken extracts an Authorization bearer token, if present.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

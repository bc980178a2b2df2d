package middleware

import (
	"context"
	"net/http"

	"github.com/pocketledger/Pocket-Ledger-Backend/internal/api/response"
	"github.com/pocketledger/Pocket-Ledger-Backend/internal/validation"
)

type contextKey string

const ownerContextKey contextKey = "ownerID"

// RequireOwner establishes the owner identity for user-facing routes.
//
// Authentication itself happens upstream of this service; the gateway forwards
// the authenticated user's id in X-Owner-ID. This middleware validates the
// header and places the id in the request context for handlers to read via
// OwnerID.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Header.Get("X-Owner-ID")
		if ownerID == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing owner identity")
			return
		}
		if err := validation.ValidateUUID(ownerID); err != nil {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid owner identity")
			return
		}

		ctx := context.WithValue(r.Context(), ownerContextKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OwnerID returns the owner id established by RequireOwner, or "" if absent.
func OwnerID(ctx context.Context) string {
	ownerID, _ := ctx.Value(ownerContextKey).(string)
	return ownerID
}

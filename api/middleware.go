package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"BrokerLedger/api/auth"
	"BrokerLedger/api/constants"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	SessionKey contextKey = "session"
)

// GetUserIDFromCtx returns the authenticated user id placed by
// SessionMiddleware, or "".
func GetUserIDFromCtx(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

// GetSessionFromCtx returns the active session placed by SessionMiddleware.
func GetSessionFromCtx(ctx context.Context) *auth.UserSession {
	if session, ok := ctx.Value(SessionKey).(*auth.UserSession); ok {
		return session
	}
	return nil
}

// ExtractUserID parses the request body once and pulls user_id out of JSON
// or multipart form bodies, restoring the body for downstream handlers.
func ExtractUserID(r *http.Request) string {
	ct := r.Header.Get(constants.ContentTypeText)
	if strings.HasPrefix(ct, constants.ContentTypeJSON) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return ""
		}
		r.Body = io.NopCloser(bytes.NewBuffer(body))
		var bodyMap map[string]interface{}
		if err := json.Unmarshal(body, &bodyMap); err == nil {
			if uid, ok := bodyMap[constants.KeyUserID].(string); ok {
				return uid
			}
		}
		return ""
	}
	if strings.Contains(strings.ToLower(ct), constants.ContentTypeMultipart) {
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			return r.FormValue(constants.KeyUserID)
		}
	}
	return ""
}

// SessionMiddleware resolves the caller from the request body's user_id and
// rejects requests without an active session. Handlers downstream read the
// user from the context and never re-parse the body for identity.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := ExtractUserID(r)
		if userID == "" {
			log.Println("[ERROR] Missing user_id in request")
			RespondWithError(w, http.StatusBadRequest, constants.ErrMissingUserID)
			return
		}

		var session *auth.UserSession
		for _, s := range auth.GetActiveSessions() {
			if s.UserID == userID {
				session = s
				break
			}
		}
		if session == nil {
			log.Println("[ERROR] Invalid session for user_id:", userID)
			RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, SessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

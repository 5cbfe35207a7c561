package httputil

import (
	"context"
	"net/http"
)

type userIDKey struct{}

// WithUserID returns a copy of r whose context carries the authenticated user
func WithUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID))
}

// GetUserID returns the authenticated user, or "" outside the auth middleware
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey{}).(string)
	return userID
}

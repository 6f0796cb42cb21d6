package jwt

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrorResponder writes the 401 response for a rejected request.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// Middleware rejects requests without a valid bearer token carrying a caller
// alias and stores the parsed claims in the request context.
func Middleware(svc *Service, onError ErrorResponder) func(http.Handler) http.Handler {
	if onError == nil {
		onError = writeUnauthorized
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				onError(w, r, err)
				return
			}
			claims, err := svc.Parse(token)
			if err != nil {
				onError(w, r, err)
				return
			}
			if claims.Alias() == "" {
				onError(w, r, ErrMissingAlias)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

func writeUnauthorized(w http.ResponseWriter, _ *http.Request, err error) {
	msg := "unauthorized"
	if errors.Is(err, ErrExpiredToken) {
		msg = "token expired"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

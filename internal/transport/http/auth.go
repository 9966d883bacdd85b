package http

import (
	"encoding/json"
	"net/http"
	"strings"
)

// AdminAuthenticator checks credentials and session tokens for the admin
// dashboard.
type AdminAuthenticator interface {
	Login(email, password string) (string, error)
	VerifyToken(token string) error
}

// HandleAdminLogin exchanges the operator's credentials for a short-lived
// session token. Any failure is a plain 401; the response never says which
// part of the credentials was wrong.
func HandleAdminLogin(svc AdminAuthenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req loginRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		token, err := svc.Login(req.Email, req.Password)
		if err != nil {
			writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "invalid credentials")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RequireAdmin guards calendar mutations behind a valid session token.
// GET requests pass through untouched so the public wizard can read the
// calendar from the same route.
func RequireAdmin(auth AdminAuthenticator, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok || auth.VerifyToken(token) != nil {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// Package www implements cookie-session authentication for the device
// dashboard's HTTP API.
package www

import (
	"encoding/json"
	"net/http"

	"enipgo/config"
)

// Auth gates handlers behind a cookie session and serves JSON login/logout.
type Auth struct {
	sessions *sessionStore
	users    []config.WebUser
}

// NewAuth builds an Auth using secret (base64, or empty to auto-generate a
// process-lifetime key) and the configured user list.
func NewAuth(secret string, users []config.WebUser) *Auth {
	return &Auth{sessions: newSessionStore(secret), users: users}
}

func (a *Auth) findUser(username string) *config.WebUser {
	for i := range a.users {
		if a.users[i].Username == username {
			return &a.users[i]
		}
	}
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a JSON {username, password} body and sets the session
// cookie on success.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user := a.findUser(req.Username)
	if user == nil || !checkPassword(req.Password, user.PasswordHash) {
		http.Error(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	if err := a.sessions.setUser(w, r, user.Username, user.Role); err != nil {
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Logout clears the session cookie.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	_ = a.sessions.clear(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// Require rejects requests with no valid session cookie.
func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := a.sessions.getUser(r); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

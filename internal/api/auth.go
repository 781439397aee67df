package api

import (
	"errors"
	"github.com/apomuden/apomuden/internal/auth"
	"github.com/apomuden/apomuden/internal/db"
	"github.com/apomuden/apomuden/internal/lang"
	"net/http"
	"strings"
	"time"
)

type userResponse struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name,omitempty"`
	PreferredLanguage lang.Code `json:"preferred_language"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}

func toUserResponse(u db.User) userResponse {
	return userResponse{
		ID:                u.ID,
		Email:             u.Email,
		FullName:          u.FullName,
		PreferredLanguage: u.PreferredLanguage,
		IsActive:          u.IsActive,
		CreatedAt:         u.CreatedAt,
	}
}

type registerRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	FullName          string `json:"full_name"`
	PreferredLanguage string `json:"preferred_language"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func parseLanguage(s string) (lang.Code, bool) {
	switch lang.Code(strings.ToLower(strings.TrimSpace(s))) {
	case "", lang.English:
		return lang.English, true
	case lang.Akan:
		return lang.Akan, true
	}
	return "", false
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusUnprocessableEntity, "a valid email is required")
		return
	}
	preferred, ok := parseLanguage(req.PreferredLanguage)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "preferred_language must be en or ak")
		return
	}

	hash, err := auth.Hash(req.Password)
	if errors.Is(err, auth.ErrWeakPassword) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("failed to hash password", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	u, err := s.queries.CreateUser(r.Context(), db.User{
		Email:             req.Email,
		FullName:          req.FullName,
		PasswordHash:      hash,
		PreferredLanguage: preferred,
	})
	if errors.Is(err, db.ErrDuplicate) {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if err != nil {
		s.logger.Error("failed to create user", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.logger.Info("registered user", "user_id", u.ID)
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// handleLogin accepts an OAuth2 password form (username, password) or a JSON
// body with email and password.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var email, password string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		err := decodeJSON(w, r, &req)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		email, password = req.Email, req.Password
	} else {
		err := r.ParseForm()
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid form body")
			return
		}
		email, password = r.PostForm.Get("username"), r.PostForm.Get("password")
	}

	u, err := s.queries.UserByEmail(r.Context(), email)
	if err == nil {
		err = auth.Verify(u.PasswordHash, password)
	}
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) && !errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Error("failed to look up user", "err", err)
		}
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if !u.IsActive {
		writeError(w, http.StatusBadRequest, "Inactive user")
		return
	}

	token, ttl, err := s.issuer.Issue(u.ID)
	if err != nil {
		s.logger.Error("failed to issue token", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(ttl.Seconds()),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

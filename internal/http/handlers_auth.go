package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"mydash/internal/core"
	"mydash/internal/store"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type sessionResponse struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// handleBootstrap creates the first admin account. It only works while
// the user table is empty; after that it always returns 409.
func (s *Server) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	req.Email = strings.ToLower(sanitizeInput(req.Email))
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}
	if len(req.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "password must be at least 8 characters"})
		return
	}

	count, err := s.users.CountUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if count > 0 {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "an account already exists"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	user, err := s.users.CreateUser(r.Context(), core.User{
		Email:        req.Email,
		Name:         sanitizeInput(req.Name),
		PasswordHash: string(hash),
		Role:         "admin",
		IsActive:     true,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	slog.InfoContext(r.Context(), "Bootstrap account created", "email", user.Email)

	sid, expires := s.sessions.create(user.ID, user.Email)
	setSessionCookie(w, sid, expires)
	writeJSON(w, http.StatusCreated, sessionResponse{Email: user.Email, Name: user.Name, Role: user.Role})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	req.Email = strings.ToLower(sanitizeInput(req.Email))

	user, err := s.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Same response as a wrong password so the endpoint does
			// not leak which emails exist.
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.WarnContext(r.Context(), "Failed login attempt", "email", req.Email)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		return
	}

	sid, expires := s.sessions.create(user.ID, user.Email)
	setSessionCookie(w, sid, expires)
	writeJSON(w, http.StatusOK, sessionResponse{Email: user.Email, Name: user.Name, Role: user.Role})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.destroy(c.Value)
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.fromRequest(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Email: sess.email})
}

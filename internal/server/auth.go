package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/AlexTLDR/invitations/internal/auth"
	"github.com/AlexTLDR/invitations/internal/database"
	"github.com/AlexTLDR/invitations/internal/server/handlers"
)

type contextKey string

const userContextKey contextKey = "user"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// handleLogin exchanges form-encoded credentials for a bearer token
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	user, err := s.db.GetUserByUsername(r.Context(), username)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to load user")
		handlers.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var hash string
	if user != nil {
		hash = user.HashedPassword
	}
	if !auth.CheckPassword(hash, password) || !user.IsAdmin {
		w.Header().Set("WWW-Authenticate", "Bearer")
		handlers.WriteError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to issue token")
		handlers.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	handlers.WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, currentUser(r))
}

// requireAdmin is a middleware that checks the bearer token belongs to an admin
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			handlers.WriteError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := s.tokens.Parse(token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			handlers.WriteError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		user, err := s.db.GetUserByUsername(r.Context(), claims.Subject)
		if errors.Is(err, database.ErrNotFound) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			handlers.WriteError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("failed to load user")
			handlers.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if !user.IsAdmin {
			handlers.WriteError(w, http.StatusForbidden, "Not enough permissions")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func currentUser(r *http.Request) *database.User {
	user, _ := r.Context().Value(userContextKey).(*database.User)
	return user
}

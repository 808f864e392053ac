package httpapi

import (
	"fmt"
	"net/http"

	"github.com/vitabu/textbook-store/internal/models"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": fmt.Sprintf("User '%s' registered successfully.", user.Username),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password required")
		return
	}

	token, _, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

func (s *Server) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req struct {
		Role models.Role `json:"role"`
	}
	if err := decodeStrict(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.users.ChangeRole(r.Context(), principal(r), id, req.Role)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

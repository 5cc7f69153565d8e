package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/catalog-admin/internal/apperr"
	"github.com/tuanvumaihuynh/catalog-admin/internal/auth"
)

type authHandler struct {
	s        *Service
	verifier auth.Verifier
}

func newAuthHandler(s *Service, verifier auth.Verifier) *authHandler {
	return &authHandler{
		s:        s,
		verifier: verifier,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	ok, err := h.verifier.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		return fmt.Errorf("verify credentials: %w", err)
	}
	if !ok {
		return apperr.AuthErr
	}

	h.s.writeJSON(w, r, http.StatusOK, messageResponse{Message: "Logged in successfully"})
	return nil
}

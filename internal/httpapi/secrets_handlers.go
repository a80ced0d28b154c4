package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"jobtrack-engine/internal/secrets"
)

type SecretsHandler struct{}

type boardCredentialsReq struct {
	UserID   int64  `json:"user_id"`
	Board    string `json:"board"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h SecretsHandler) SetBoardCredentials(w http.ResponseWriter, r *http.Request) {
	var req boardCredentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON: "+err.Error())
		return
	}
	req.Board = strings.TrimSpace(strings.ToLower(req.Board))
	if req.UserID <= 0 || req.Board == "" || req.Email == "" || req.Password == "" {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "user_id, board, email and password are required")
		return
	}
	creds := secrets.Credentials{Email: req.Email, Password: req.Password}
	if err := secrets.SetBoardCredentials(req.UserID, req.Board, creds); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keyring_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

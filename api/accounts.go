package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/autofeedr/autofeedr/internal/models"
	"github.com/autofeedr/autofeedr/internal/repository"
	"github.com/autofeedr/autofeedr/internal/secrets"
)

type AccountsHandler struct {
	accountRepo repository.AccountRepo
	box         *secrets.Box
}

func NewAccountsHandler(ar repository.AccountRepo, box *secrets.Box) *AccountsHandler {
	return &AccountsHandler{accountRepo: ar, box: box}
}

type createAccountRequest struct {
	Name              string  `json:"name"`
	Token             string  `json:"token"`
	URN               string  `json:"urn"`
	PromptGeneration  *string `json:"prompt_generation,omitempty"`
	PromptTranslation *string `json:"prompt_translation,omitempty"`
}

func (h *AccountsHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	if userID <= 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.URN = strings.TrimSpace(req.URN)
	if req.Name == "" || req.Token == "" || req.URN == "" {
		http.Error(w, "missing fields", http.StatusBadRequest)
		return
	}

	encToken, err := h.box.Encrypt(req.Token)
	if err != nil {
		http.Error(w, "failed to encrypt token", http.StatusInternalServerError)
		return
	}

	account := &models.LinkedinAccount{
		OwnerUserID:       userID,
		Name:              req.Name,
		TokenEncrypted:    encToken,
		URN:               req.URN,
		PromptGeneration:  req.PromptGeneration,
		PromptTranslation: req.PromptTranslation,
		IsActive:          true,
	}
	id, err := h.accountRepo.CreateAccount(r.Context(), account)
	if err != nil {
		http.Error(w, "failed to store account", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": id}, http.StatusCreated)
}

func (h *AccountsHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountRepo.ListAccounts(r.Context())
	if err != nil {
		http.Error(w, "failed to list accounts", http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []models.LinkedinAccount{}
	}
	writeJSON(w, accounts, http.StatusOK)
}

type updateAccountRequest struct {
	Name              *string `json:"name,omitempty"`
	Token             *string `json:"token,omitempty"`
	URN               *string `json:"urn,omitempty"`
	PromptGeneration  *string `json:"prompt_generation,omitempty"`
	PromptTranslation *string `json:"prompt_translation,omitempty"`
	IsActive          *bool   `json:"is_active,omitempty"`
}

func (h *AccountsHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}

	account, err := h.accountRepo.GetAccountByID(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to load account", http.StatusInternalServerError)
		return
	}
	if account == nil {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.Name != nil {
		account.Name = strings.TrimSpace(*req.Name)
	}
	if req.URN != nil {
		account.URN = strings.TrimSpace(*req.URN)
	}
	if req.Token != nil && *req.Token != "" {
		encToken, err := h.box.Encrypt(*req.Token)
		if err != nil {
			http.Error(w, "failed to encrypt token", http.StatusInternalServerError)
			return
		}
		account.TokenEncrypted = encToken
	}
	if req.PromptGeneration != nil {
		account.PromptGeneration = req.PromptGeneration
	}
	if req.PromptTranslation != nil {
		account.PromptTranslation = req.PromptTranslation
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}

	if err := h.accountRepo.UpdateAccount(r.Context(), account); err != nil {
		http.Error(w, "failed to update account", http.StatusInternalServerError)
		return
	}
	writeJSON(w, account, http.StatusOK)
}

func (h *AccountsHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}
	if err := h.accountRepo.DeleteAccount(r.Context(), id); err != nil {
		http.Error(w, "failed to delete account", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

package api

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/autofeedr/autofeedr/internal/models"
	"github.com/autofeedr/autofeedr/internal/repository"
	"github.com/autofeedr/autofeedr/internal/secrets"
)

type GitHubHandler struct {
	githubRepo repository.GitHubRepo
	box        *secrets.Box
}

func NewGitHubHandler(gr repository.GitHubRepo, box *secrets.Box) *GitHubHandler {
	return &GitHubHandler{githubRepo: gr, box: box}
}

var sshURLPattern = regexp.MustCompile(`^git@[^:]+:[^/]+/.+$`)

type createGitHubAccountRequest struct {
	Name          string  `json:"name"`
	SSHPrivateKey string  `json:"ssh_private_key"`
	SSHPassphrase *string `json:"ssh_passphrase,omitempty"`
}

func (h *GitHubHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createGitHubAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || strings.TrimSpace(req.SSHPrivateKey) == "" {
		http.Error(w, "missing fields", http.StatusBadRequest)
		return
	}

	encKey, err := h.box.Encrypt(req.SSHPrivateKey)
	if err != nil {
		http.Error(w, "failed to encrypt ssh key", http.StatusInternalServerError)
		return
	}
	account := &models.GitHubAccount{
		Name:            req.Name,
		SSHKeyEncrypted: encKey,
		IsActive:        true,
	}
	if req.SSHPassphrase != nil && *req.SSHPassphrase != "" {
		encPass, err := h.box.Encrypt(*req.SSHPassphrase)
		if err != nil {
			http.Error(w, "failed to encrypt passphrase", http.StatusInternalServerError)
			return
		}
		account.SSHPassphraseEncrypted = &encPass
	}

	id, err := h.githubRepo.CreateGitHubAccount(r.Context(), account)
	if err != nil {
		http.Error(w, "failed to store account", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"id": id}, http.StatusCreated)
}

func (h *GitHubHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.githubRepo.ListGitHubAccounts(r.Context())
	if err != nil {
		http.Error(w, "failed to list accounts", http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []models.GitHubAccount{}
	}
	writeJSON(w, accounts, http.StatusOK)
}

func (h *GitHubHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}
	if err := h.githubRepo.DeleteGitHubAccount(r.Context(), id); err != nil {
		http.Error(w, "failed to delete account", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createRepositoryRequest struct {
	AccountID         int64  `json:"account_id"`
	RepoSSHURL        string `json:"repo_ssh_url"`
	DefaultBranch     string `json:"default_branch,omitempty"`
	SolutionsDir      string `json:"solutions_dir,omitempty"`
	CommitAuthorName  string `json:"commit_author_name"`
	CommitAuthorEmail string `json:"commit_author_email"`
	SelectionStrategy string `json:"selection_strategy,omitempty"`
	DifficultyPolicy  string `json:"difficulty_policy,omitempty"`
}

func (h *GitHubHandler) CreateRepository(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r)
	if userID <= 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createRepositoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.RepoSSHURL = strings.TrimSpace(req.RepoSSHURL)
	if req.AccountID <= 0 || req.RepoSSHURL == "" || req.CommitAuthorName == "" || req.CommitAuthorEmail == "" {
		http.Error(w, "missing fields", http.StatusBadRequest)
		return
	}
	if !sshURLPattern.MatchString(req.RepoSSHURL) {
		http.Error(w, "repo_ssh_url must be an SSH remote (git@host:owner/repo)", http.StatusBadRequest)
		return
	}

	account, err := h.githubRepo.GetGitHubAccountByID(r.Context(), req.AccountID)
	if err != nil {
		http.Error(w, "failed to load account", http.StatusInternalServerError)
		return
	}
	if account == nil {
		http.Error(w, "github account not found", http.StatusNotFound)
		return
	}

	if req.DefaultBranch == "" {
		req.DefaultBranch = "main"
	}
	if req.SolutionsDir == "" {
		req.SolutionsDir = "leetcode/python"
	}
	if req.SelectionStrategy == "" {
		req.SelectionStrategy = "random"
	}
	if req.DifficultyPolicy == "" {
		req.DifficultyPolicy = "random"
	}

	repo := &models.GitHubRepository{
		AccountID:         req.AccountID,
		OwnerUserID:       userID,
		RepoSSHURL:        req.RepoSSHURL,
		DefaultBranch:     req.DefaultBranch,
		SolutionsDir:      req.SolutionsDir,
		CommitAuthorName:  req.CommitAuthorName,
		CommitAuthorEmail: req.CommitAuthorEmail,
		SelectionStrategy: req.SelectionStrategy,
		DifficultyPolicy:  req.DifficultyPolicy,
		IsActive:          true,
	}
	id, err := h.githubRepo.CreateRepository(r.Context(), repo)
	if err != nil {
		http.Error(w, "failed to store repository", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"id": id}, http.StatusCreated)
}

func (h *GitHubHandler) ListRepositories(w http.ResponseWriter, r *http.Request) {
	repos, err := h.githubRepo.ListRepositories(r.Context())
	if err != nil {
		http.Error(w, "failed to list repositories", http.StatusInternalServerError)
		return
	}
	if repos == nil {
		repos = []models.GitHubRepository{}
	}
	writeJSON(w, repos, http.StatusOK)
}

func (h *GitHubHandler) DeleteRepository(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid repository id", http.StatusBadRequest)
		return
	}
	if err := h.githubRepo.DeleteRepository(r.Context(), id); err != nil {
		http.Error(w, "failed to delete repository", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/autofeedr/autofeedr/internal/models"
)

func (r *SQLiteRepo) CreateGitHubAccount(ctx context.Context, a *models.GitHubAccount) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("github account is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO github_accounts (name, ssh_key_encrypted, ssh_passphrase_encrypted, is_active, created, updated) VALUES (?, ?, ?, ?, ?, ?)`,
		a.Name, a.SSHKeyEncrypted, a.SSHPassphraseEncrypted, boolToInt(a.IsActive), now(), now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetGitHubAccountByID(ctx context.Context, id int64) (*models.GitHubAccount, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT id, name, ssh_key_encrypted, ssh_passphrase_encrypted, is_active, created, updated FROM github_accounts WHERE id = ?`, id)
	a, err := scanGitHubAccount(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *SQLiteRepo) ListGitHubAccounts(ctx context.Context) ([]models.GitHubAccount, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, name, ssh_key_encrypted, ssh_passphrase_encrypted, is_active, created, updated FROM github_accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GitHubAccount
	for rows.Next() {
		a, err := scanGitHubAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateGitHubAccount(ctx context.Context, a *models.GitHubAccount) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE github_accounts SET name = ?, ssh_key_encrypted = ?, ssh_passphrase_encrypted = ?, is_active = ?, updated = ? WHERE id = ?`,
		a.Name, a.SSHKeyEncrypted, a.SSHPassphraseEncrypted, boolToInt(a.IsActive), now(), a.ID)
	return err
}

func (r *SQLiteRepo) DeleteGitHubAccount(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM github_accounts WHERE id = ?`, id)
	return err
}

const repositoryColumns = `id, account_id, owner_user_id, repo_ssh_url, default_branch, solutions_dir, commit_author_name, commit_author_email, selection_strategy, difficulty_policy, is_active, created, updated`

func (r *SQLiteRepo) CreateRepository(ctx context.Context, repo *models.GitHubRepository) (int64, error) {
	if repo == nil {
		return 0, fmt.Errorf("repository is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO github_repositories (account_id, owner_user_id, repo_ssh_url, default_branch, solutions_dir, commit_author_name, commit_author_email, selection_strategy, difficulty_policy, is_active, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		repo.AccountID, repo.OwnerUserID, repo.RepoSSHURL, repo.DefaultBranch, repo.SolutionsDir, repo.CommitAuthorName, repo.CommitAuthorEmail, repo.SelectionStrategy, repo.DifficultyPolicy, boolToInt(repo.IsActive), now(), now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetRepositoryByID(ctx context.Context, id int64) (*models.GitHubRepository, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+repositoryColumns+` FROM github_repositories WHERE id = ?`, id)
	repo, err := scanRepository(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return repo, err
}

func (r *SQLiteRepo) ListRepositories(ctx context.Context) ([]models.GitHubRepository, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+repositoryColumns+` FROM github_repositories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GitHubRepository
	for rows.Next() {
		repo, err := scanRepository(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *repo)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateRepository(ctx context.Context, repo *models.GitHubRepository) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE github_repositories SET repo_ssh_url = ?, default_branch = ?, solutions_dir = ?, commit_author_name = ?, commit_author_email = ?, selection_strategy = ?, difficulty_policy = ?, is_active = ?, updated = ? WHERE id = ?`,
		repo.RepoSSHURL, repo.DefaultBranch, repo.SolutionsDir, repo.CommitAuthorName, repo.CommitAuthorEmail, repo.SelectionStrategy, repo.DifficultyPolicy, boolToInt(repo.IsActive), now(), repo.ID)
	return err
}

func (r *SQLiteRepo) DeleteRepository(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM github_repositories WHERE id = ?`, id)
	return err
}

func scanGitHubAccount(scan func(dest ...any) error) (*models.GitHubAccount, error) {
	var (
		a          models.GitHubAccount
		passphrase sql.NullString
		isActive   int
	)
	if err := scan(&a.ID, &a.Name, &a.SSHKeyEncrypted, &passphrase, &isActive, &a.Created, &a.Updated); err != nil {
		return nil, err
	}
	if passphrase.Valid {
		a.SSHPassphraseEncrypted = &passphrase.String
	}
	a.IsActive = isActive != 0
	return &a, nil
}

func scanRepository(scan func(dest ...any) error) (*models.GitHubRepository, error) {
	var (
		repo     models.GitHubRepository
		isActive int
	)
	if err := scan(&repo.ID, &repo.AccountID, &repo.OwnerUserID, &repo.RepoSSHURL, &repo.DefaultBranch, &repo.SolutionsDir, &repo.CommitAuthorName, &repo.CommitAuthorEmail, &repo.SelectionStrategy, &repo.DifficultyPolicy, &isActive, &repo.Created, &repo.Updated); err != nil {
		return nil, err
	}
	repo.IsActive = isActive != 0
	return &repo, nil
}

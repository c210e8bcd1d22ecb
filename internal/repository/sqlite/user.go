package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/autofeedr/autofeedr/internal/models"
)

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO users (email, name, password_hash, openai_api_key_encrypted, leetcode_solution_prompt, is_active, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.Name, u.PasswordHash, u.OpenAIAPIKeyEncrypted, u.LeetCodePrompt, boolToInt(u.IsActive), now(), now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.scanUser(r.conn.QueryRow(ctx,
		`SELECT id, email, name, password_hash, openai_api_key_encrypted, leetcode_solution_prompt, is_active, created, updated FROM users WHERE id = ?`, id))
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.scanUser(r.conn.QueryRow(ctx,
		`SELECT id, email, name, password_hash, openai_api_key_encrypted, leetcode_solution_prompt, is_active, created, updated FROM users WHERE email = ?`, email))
}

func (r *SQLiteRepo) UpdateUser(ctx context.Context, u *models.User) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE users SET email = ?, name = ?, password_hash = ?, openai_api_key_encrypted = ?, leetcode_solution_prompt = ?, is_active = ?, updated = ? WHERE id = ?`,
		u.Email, u.Name, u.PasswordHash, u.OpenAIAPIKeyEncrypted, u.LeetCodePrompt, boolToInt(u.IsActive), now(), u.ID)
	return err
}

func (r *SQLiteRepo) scanUser(row *sql.Row) (*models.User, error) {
	var (
		u        models.User
		apiKey   sql.NullString
		prompt   sql.NullString
		isActive int
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &apiKey, &prompt, &isActive, &u.Created, &u.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if apiKey.Valid {
		u.OpenAIAPIKeyEncrypted = &apiKey.String
	}
	if prompt.Valid {
		u.LeetCodePrompt = &prompt.String
	}
	u.IsActive = isActive != 0
	return &u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/autofeedr/autofeedr/internal/models"
)

const accountColumns = `id, owner_user_id, name, token_encrypted, urn, prompt_generation, prompt_translation, is_active, created, updated`

func (r *SQLiteRepo) CreateAccount(ctx context.Context, a *models.LinkedinAccount) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("account is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO linkedin_accounts (owner_user_id, name, token_encrypted, urn, prompt_generation, prompt_translation, is_active, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.OwnerUserID, a.Name, a.TokenEncrypted, a.URN, a.PromptGeneration, a.PromptTranslation, boolToInt(a.IsActive), now(), now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetAccountByID(ctx context.Context, id int64) (*models.LinkedinAccount, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM linkedin_accounts WHERE id = ?`, id)
	a, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *SQLiteRepo) ListAccounts(ctx context.Context) ([]models.LinkedinAccount, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+accountColumns+` FROM linkedin_accounts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LinkedinAccount
	for rows.Next() {
		a, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateAccount(ctx context.Context, a *models.LinkedinAccount) error {
	_, err := r.conn.Exec(ctx,
		`UPDATE linkedin_accounts SET name = ?, token_encrypted = ?, urn = ?, prompt_generation = ?, prompt_translation = ?, is_active = ?, updated = ? WHERE id = ?`,
		a.Name, a.TokenEncrypted, a.URN, a.PromptGeneration, a.PromptTranslation, boolToInt(a.IsActive), now(), a.ID)
	return err
}

func (r *SQLiteRepo) DeleteAccount(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM linkedin_accounts WHERE id = ?`, id)
	return err
}

func scanAccount(scan func(dest ...any) error) (*models.LinkedinAccount, error) {
	var (
		a          models.LinkedinAccount
		promptGen  sql.NullString
		promptTr   sql.NullString
		isActive   int
	)
	if err := scan(&a.ID, &a.OwnerUserID, &a.Name, &a.TokenEncrypted, &a.URN, &promptGen, &promptTr, &isActive, &a.Created, &a.Updated); err != nil {
		return nil, err
	}
	if promptGen.Valid {
		a.PromptGeneration = &promptGen.String
	}
	if promptTr.Valid {
		a.PromptTranslation = &promptTr.String
	}
	a.IsActive = isActive != 0
	return &a, nil
}

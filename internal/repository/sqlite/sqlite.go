package sqlite

import (
	"strings"
	"time"

	"log/slog"

	"github.com/autofeedr/autofeedr/internal/db"
	"github.com/autofeedr/autofeedr/internal/repository"
)

// SQLiteRepo implements the repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UserRepo = (*SQLiteRepo)(nil)
var _ repository.AccountRepo = (*SQLiteRepo)(nil)
var _ repository.ScheduleRepo = (*SQLiteRepo)(nil)
var _ repository.JobRepo = (*SQLiteRepo)(nil)
var _ repository.GitHubRepo = (*SQLiteRepo)(nil)
var _ repository.LeetCodeRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

func now() int64 {
	return time.Now().UTC().Unix()
}

// isUniqueViolation detects sqlite unique-constraint failures. The driver does
// not export a typed error for this, so we match the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

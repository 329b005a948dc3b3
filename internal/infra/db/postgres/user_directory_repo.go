package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"classroom-ai-assistant/internal/domain"
	"classroom-ai-assistant/internal/domain/model"
	"classroom-ai-assistant/internal/domain/ports/repository"
)

var _ repository.UserDirectory = (*userDirectoryRepo)(nil)

// userDirectoryRepo resolves roster emails against the directory_users
// table mirrored from the authentication directory.
type userDirectoryRepo struct {
	pool *pgxpool.Pool
}

func NewUserDirectoryRepo(pool *pgxpool.Pool) *userDirectoryRepo {
	return &userDirectoryRepo{pool: pool}
}

func (r *userDirectoryRepo) FindUIDByEmail(ctx context.Context, tx repository.Tx, email string) (string, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return "", err
	}
	const q = `SELECT uid FROM directory_users WHERE email=$1;`
	var uid string
	if err := ex.QueryRow(ctx, q, model.NormalizeEmail(email)).Scan(&uid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", domain.ErrReadDatabaseRow
	}
	return uid, nil
}

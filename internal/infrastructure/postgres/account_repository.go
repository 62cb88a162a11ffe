package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yklymenko/contacthub/internal/domain/entity"
	"github.com/yklymenko/contacthub/internal/domain/repository"
)

// uniqueViolation is the Postgres error code for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (username, email, hashed_password, role_id, avatar_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, a.Username, a.Email, a.HashedPassword, a.RoleID, a.AvatarURL, a.IsActive)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

const accountColumns = `
	id, username, email, hashed_password, role_id,
	COALESCE(avatar_url, ''), is_active, created_at, updated_at`

func (r *AccountRepository) scanOne(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.HashedPassword, &a.RoleID,
		&a.AvatarURL, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// a miss is an absence value, not an error
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT`+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT`+accountColumns+`
		FROM accounts
		WHERE email = $1
	`, email))
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*entity.Account, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT`+accountColumns+`
		FROM accounts
		WHERE username = $1
	`, username))
}

func (r *AccountRepository) Update(ctx context.Context, a *entity.Account) error {
	a.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET avatar_url = $1, is_active = $2, updated_at = $3
		WHERE id = $4
	`, a.AvatarURL, a.IsActive, a.UpdatedAt, a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)

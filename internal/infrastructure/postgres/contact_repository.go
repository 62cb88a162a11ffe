package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yklymenko/contacthub/internal/domain/entity"
	"github.com/yklymenko/contacthub/internal/domain/repository"
)

type ContactRepository struct {
	pool *pgxpool.Pool
}

func NewContactRepository(pool *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

// birthdayArg maps the zero time to SQL NULL.
func birthdayArg(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func (r *ContactRepository) Create(ctx context.Context, c *entity.Contact) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO contacts (owner_id, first_name, last_name, email, phone_number, birthday, additional_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, c.OwnerID, c.FirstName, c.LastName, c.Email, c.PhoneNumber, birthdayArg(c.Birthday), c.AdditionalInfo)

	return row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

const contactColumns = `
	id, owner_id, first_name, last_name,
	COALESCE(email, ''), COALESCE(phone_number, ''), birthday,
	COALESCE(additional_info, ''), created_at, updated_at`

func scanContact(row pgx.Row) (*entity.Contact, error) {
	c := &entity.Contact{}
	var bday *time.Time
	if err := row.Scan(&c.ID, &c.OwnerID, &c.FirstName, &c.LastName,
		&c.Email, &c.PhoneNumber, &bday,
		&c.AdditionalInfo, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if bday != nil {
		c.Birthday = *bday
	}
	return c, nil
}

func collectContacts(rows pgx.Rows) ([]entity.Contact, error) {
	defer rows.Close()
	var out []entity.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *ContactRepository) GetByID(ctx context.Context, id, ownerID string) (*entity.Contact, error) {
	c, err := scanContact(r.pool.QueryRow(ctx, `
		SELECT`+contactColumns+`
		FROM contacts
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *ContactRepository) ListByOwner(ctx context.Context, ownerID string) ([]entity.Contact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+contactColumns+`
		FROM contacts
		WHERE owner_id = $1
		ORDER BY last_name, first_name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

func (r *ContactRepository) Update(ctx context.Context, c *entity.Contact) error {
	c.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE contacts
		SET first_name = $1, last_name = $2, email = $3, phone_number = $4,
		    birthday = $5, additional_info = $6, updated_at = $7
		WHERE id = $8 AND owner_id = $9
	`, c.FirstName, c.LastName, c.Email, c.PhoneNumber,
		birthdayArg(c.Birthday), c.AdditionalInfo, c.UpdatedAt, c.ID, c.OwnerID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ContactRepository) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM contacts
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ContactRepository) Search(ctx context.Context, ownerID string, f repository.ContactFilter) ([]entity.Contact, error) {
	query := `
		SELECT` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1`
	args := []any{ownerID}

	addFilter := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, "%"+value+"%")
		query += fmt.Sprintf(" AND %s ILIKE $%d", column, len(args))
	}
	addFilter("first_name", f.FirstName)
	addFilter("last_name", f.LastName)
	addFilter("email", f.Email)
	query += " ORDER BY last_name, first_name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

func (r *ContactRepository) ListWithBirthdays(ctx context.Context, ownerID string) ([]entity.Contact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+contactColumns+`
		FROM contacts
		WHERE owner_id = $1 AND birthday IS NOT NULL
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectContacts(rows)
}

var _ repository.ContactRepository = (*ContactRepository)(nil)

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/account-service/internal/domain"
	"github.com/ErlanBelekov/account-service/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgInvalidTextEncoding = "22P02"

	externalIdentityConstraint = "users_external_identity_id_key"

	userColumns = `id, email, first_name, last_name, phone_number, date_of_birth,
		postcode, external_identity_id, created_at, updated_at`
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

var _ repository.UserRepository = (*UserRepository)(nil)

// UpsertByEmail keeps an existing row as-is apart from backfilling a missing
// external identity. A row already linked to the same external identity under
// another email is returned instead of a second row.
func (r *UserRepository) UpsertByEmail(ctx context.Context, email string, defaults repository.CreateUserInput) (*domain.User, error) {
	query := `
		INSERT INTO users (
			email, first_name, last_name, phone_number,
			date_of_birth, postcode, external_identity_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO UPDATE
		SET external_identity_id = COALESCE(users.external_identity_id, EXCLUDED.external_identity_id)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		email,
		defaults.FirstName,
		defaults.LastName,
		defaults.PhoneNumber,
		defaults.DateOfBirth,
		defaults.Postcode,
		defaults.ExternalIdentityID,
	)
	u, err := scanUser(row)
	if err != nil {
		if isExternalIdentityConflict(err) && defaults.ExternalIdentityID != nil {
			return r.GetByExternalID(ctx, *defaults.ExternalIdentityID)
		}
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, input repository.CreateUserInput) (*domain.User, error) {
	query := `
		INSERT INTO users (
			email, first_name, last_name, phone_number,
			date_of_birth, postcode, external_identity_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		input.Email,
		input.FirstName,
		input.LastName,
		input.PhoneNumber,
		input.DateOfBirth,
		input.Postcode,
		input.ExternalIdentityID,
	)
	u, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_identity_id = $1`
	return r.getOne(ctx, query, externalID)
}

func (r *UserRepository) UpdateByID(ctx context.Context, id string, input repository.UpdateUserInput) (*domain.User, error) {
	query := `
		UPDATE users
		SET    first_name    = COALESCE($2, first_name),
		       last_name     = COALESCE($3, last_name),
		       phone_number  = COALESCE($4, phone_number),
		       date_of_birth = COALESCE($5, date_of_birth),
		       postcode      = COALESCE($6, postcode),
		       updated_at    = NOW()
		WHERE  id = $1
		RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		id,
		input.FirstName,
		input.LastName,
		input.PhoneNumber,
		input.DateOfBirth,
		input.Postcode,
	)
	u, err := scanUser(row)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func isExternalIdentityConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation &&
		pgErr.ConstraintName == externalIdentityConstraint
}

// isNotFound treats a malformed UUID the same as a missing row.
func isNotFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextEncoding
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.PhoneNumber,
		&u.DateOfBirth,
		&u.Postcode,
		&u.ExternalIdentityID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

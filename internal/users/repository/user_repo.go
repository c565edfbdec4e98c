package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/GoSim-25-26J-441/taskroom-backend/internal/apperr"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/auth"
	"github.com/GoSim-25-26J-441/taskroom-backend/internal/users/domain"
)

const userColumns = `id, name, email, password, token, token_issued_at, confirmed, created_at, updated_at`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves a user by id
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail retrieves a user by normalized email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// FindByToken retrieves the user holding a pending-action token
func (r *UserRepository) FindByToken(ctx context.Context, token string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE token = $1`, token)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	var (
		u             domain.User
		token         sql.NullString
		tokenIssuedAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Password,
		&token,
		&tokenIssuedAt,
		&u.Confirmed,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}

	// Handle nullable fields
	if token.Valid {
		u.Token = &token.String
	}
	if tokenIssuedAt.Valid {
		u.TokenIssuedAt = &tokenIssuedAt.Time
	}

	return &u, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}

	query := `
		INSERT INTO users (id, name, email, password, token, token_issued_at, confirmed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		u.Password,
		u.Token,
		u.TokenIssuedAt,
		u.Confirmed,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return classify("create user", err)
	}

	return nil
}

// Update persists every mutable field of u
func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, password = $3, token = $4, token_issued_at = $5, confirmed = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		u.ID,
		u.Name,
		u.Password,
		u.Token,
		u.TokenIssuedAt,
		u.Confirmed,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("user not found")
	}
	if err != nil {
		return classify("update user", err)
	}

	return nil
}

// FindIdentity satisfies auth.IdentityFinder.
func (r *UserRepository) FindIdentity(ctx context.Context, id string) (auth.Identity, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return auth.Identity{}, err
	}
	return u.Identity(), nil
}

// FindIdentityByEmail looks up a collaboration candidate.
func (r *UserRepository) FindIdentityByEmail(ctx context.Context, email string) (auth.Identity, error) {
	u, err := r.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return auth.Identity{}, err
	}
	return u.Identity(), nil
}

// IdentitiesByIDs loads the identities for ids. Unknown ids are absent
// from the result.
func (r *UserRepository) IdentitiesByIDs(ctx context.Context, ids []string) (map[string]auth.Identity, error) {
	out := make(map[string]auth.Identity, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, apperr.Internal("load identities", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id auth.Identity
		if err := rows.Scan(&id.ID, &id.Name, &id.Email); err != nil {
			return nil, apperr.Internal("scan identity", err)
		}
		out[id.ID] = id
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("load identities", err)
	}
	return out, nil
}

// ClearStaleTokens drops pending-action tokens issued before cutoff.
func (r *UserRepository) ClearStaleTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET token = NULL, token_issued_at = NULL, updated_at = NOW()
		WHERE token IS NOT NULL AND token_issued_at < $1
	`, cutoff)
	if err != nil {
		return 0, apperr.Internal("clear stale tokens", err)
	}
	return result.RowsAffected()
}

func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return apperr.Conflict("user already registered")
		case "23502", "23514", "22P02":
			return apperr.Wrap(apperr.KindValidation, "invalid user fields", err)
		}
	}
	return apperr.Internal(op, err)
}

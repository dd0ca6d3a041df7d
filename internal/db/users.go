package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mlekodaj/gatepass/internal/models"
)

var (
	// ErrDuplicateUser reports a unique-constraint conflict on either
	// the user_id or the email column. Callers must not be told which.
	ErrDuplicateUser = errors.New("db: user id or email already registered")

	// ErrNotFound reports that no row matched the given identifier.
	ErrNotFound = errors.New("db: user not found")
)

// UserStore executes the two credential operations against the users
// relation. Duplicate detection is left entirely to the relation's
// unique constraints; there is no pre-check.
type UserStore struct {
	pg *Postgres
}

func NewUserStore(pg *Postgres) *UserStore {
	return &UserStore{pg: pg}
}

// InsertUser writes a single row and fills in the assigned surrogate id
// and creation timestamp.
func (s *UserStore) InsertUser(ctx context.Context, user *models.User) error {
	pool, err := s.pg.Acquire(ctx)
	if err != nil {
		return err
	}

	id := uuid.NewString()

	const query = `INSERT INTO users (id, user_id, name, email, phone, password)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at`

	var createdAt time.Time
	if err := pool.QueryRow(ctx, query,
		id, user.UserID, user.Name, user.Email, user.Phone, user.Password,
	).Scan(&createdAt); err != nil {
		return classify(fmt.Errorf("insert user: %w", err))
	}

	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

// FindByIdentifier returns the single row whose user_id or email equals
// identifier. A miss is reported as ErrNotFound.
func (s *UserStore) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	pool, err := s.pg.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	const query = `SELECT id, user_id, name, email, phone, password, created_at
        FROM users
        WHERE user_id = $1 OR email = $1`

	var user models.User
	if err := pool.QueryRow(ctx, query, identifier).Scan(
		&user.ID,
		&user.UserID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.Password,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, classify(fmt.Errorf("query user by identifier: %w", err))
	}

	return &user, nil
}

// classify maps driver faults onto the store error taxonomy so callers
// match on error kind instead of inspecting message text.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgerrcode.UniqueViolation:
			return ErrDuplicateUser
		case pgerrcode.IsConnectionException(pgErr.Code):
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return err
}

package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mlekodaj/gatepass/internal/db"
	"github.com/mlekodaj/gatepass/internal/metrics"
	"github.com/mlekodaj/gatepass/internal/models"
)

var (
	ErrValidation         = errors.New("auth: all fields are required")
	ErrDuplicateUser      = errors.New("auth: user id or email already registered")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrStoreUnavailable   = errors.New("auth: store unavailable")
	ErrInternal           = errors.New("auth: internal error")
)

// UserStore is the credential store contract the service runs against.
type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
}

type RegisterInput struct {
	UserID   string
	Name     string
	Email    string
	Phone    string
	Password string
}

type LoginInput struct {
	Identifier string
	Password   string
}

// Result is the outcome of a successful register or login: a
// confirmation message and the record with its hash stripped. Login
// carries no further state; there is no session or token.
type Result struct {
	Message string
	User    models.User
}

type Service struct {
	store UserStore
}

func NewService(store UserStore) *Service {
	return &Service{store: store}
}

// Register hashes the password and inserts a new credential record.
// Uniqueness of user_id and email is enforced solely by the store's
// constraints; the insert itself is the conflict check.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	timer := metrics.OperationTimer("register")
	defer timer.ObserveDuration()

	userID := strings.TrimSpace(input.UserID)
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	phone := strings.TrimSpace(input.Phone)

	if userID == "" || name == "" || email == "" || phone == "" || strings.TrimSpace(input.Password) == "" {
		metrics.CountAttempt("register", "validation_error")
		return nil, ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("password hashing failed", zap.Error(err))
		metrics.CountAttempt("register", "internal_error")
		return nil, ErrInternal
	}

	user := &models.User{
		UserID:   userID,
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: string(hash),
	}

	if err := s.store.InsertUser(ctx, user); err != nil {
		mapped := s.mapStoreError(err, "register insert")
		metrics.CountAttempt("register", outcomeLabel(mapped))
		return nil, mapped
	}

	metrics.CountAttempt("register", "success")
	return &Result{
		Message: "registration successful",
		User:    user.Sanitize(),
	}, nil
}

// Login resolves the identifier against either the user_id or the email
// column in a single lookup and verifies the password against the
// stored hash. A lookup miss and a hash mismatch produce the same
// error so callers cannot probe for registered identifiers.
func (s *Service) Login(ctx context.Context, input LoginInput) (*Result, error) {
	timer := metrics.OperationTimer("login")
	defer timer.ObserveDuration()

	identifier := strings.TrimSpace(input.Identifier)
	if identifier == "" || input.Password == "" {
		metrics.CountAttempt("login", "validation_error")
		return nil, ErrValidation
	}

	user, err := s.store.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			metrics.CountAttempt("login", "invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		mapped := s.mapStoreError(err, "login lookup")
		metrics.CountAttempt("login", outcomeLabel(mapped))
		return nil, mapped
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		metrics.CountAttempt("login", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	metrics.CountAttempt("login", "success")
	return &Result{
		Message: "login successful",
		User:    user.Sanitize(),
	}, nil
}

// mapStoreError translates store taxonomy errors into service errors,
// logging full detail for faults that reach the caller as an opaque
// class only.
func (s *Service) mapStoreError(err error, op string) error {
	switch {
	case errors.Is(err, db.ErrDuplicateUser):
		return ErrDuplicateUser
	case errors.Is(err, db.ErrUnavailable):
		zap.L().Error("store unavailable", zap.String("op", op), zap.Error(err))
		return ErrStoreUnavailable
	default:
		zap.L().Error("store operation failed", zap.String("op", op), zap.Error(err))
		return ErrInternal
	}
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, ErrDuplicateUser):
		return "duplicate"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "internal_error"
	}
}

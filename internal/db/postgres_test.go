package db_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mlekodaj/gatepass/internal/db"
	"github.com/mlekodaj/gatepass/internal/models"
	"github.com/mlekodaj/gatepass/internal/utils"
)

func TestAcquireRetriesAfterFailure(t *testing.T) {
	// Nothing listens on this port; every open attempt must fail with
	// ErrUnavailable and the handle must keep retrying instead of
	// latching the first failure.
	pg := db.NewPostgres(utils.PostgresConfig{
		DSN:            "postgres://postgres:pw@127.0.0.1:1/postgres",
		ConnectTimeout: 2 * time.Second,
	})
	defer pg.Close()

	for i := 0; i < 2; i++ {
		if _, err := pg.Acquire(context.Background()); !errors.Is(err, db.ErrUnavailable) {
			t.Fatalf("attempt %d: expected ErrUnavailable, got %v", i, err)
		}
	}
}

func TestUserStoreAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	pg := db.NewPostgres(utils.PostgresConfig{
		DSN:            dsn,
		ConnectTimeout: 5 * time.Second,
	})
	defer pg.Close()

	ctx := context.Background()

	// Bootstrap is idempotent: a second handle against the same store
	// acquires cleanly.
	second := db.NewPostgres(utils.PostgresConfig{DSN: dsn, ConnectTimeout: 5 * time.Second})
	if _, err := second.Acquire(ctx); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	second.Close()

	store := db.NewUserStore(pg)

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	user := &models.User{
		UserID:   fmt.Sprintf("it-%s", suffix),
		Name:     "Integration Test",
		Email:    fmt.Sprintf("it-%s@example.com", suffix),
		Phone:    "555-0199",
		Password: "$2a$10$notarealhashnotarealhashnotarealhashno",
	}

	if err := store.InsertUser(ctx, user); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if user.ID == "" || user.CreatedAt.IsZero() {
		t.Fatalf("expected assigned id and created_at, got %+v", user)
	}

	byUserID, err := store.FindByIdentifier(ctx, user.UserID)
	if err != nil {
		t.Fatalf("find by user_id failed: %v", err)
	}
	byEmail, err := store.FindByIdentifier(ctx, user.Email)
	if err != nil {
		t.Fatalf("find by email failed: %v", err)
	}
	if byUserID.ID != user.ID || byEmail.ID != user.ID {
		t.Fatalf("expected both identifiers to resolve to the same row")
	}
	if byUserID.Password != user.Password {
		t.Fatalf("expected stored hash to round-trip verbatim")
	}

	dup := &models.User{
		UserID:   user.UserID,
		Name:     "Other",
		Email:    fmt.Sprintf("other-%s@example.com", suffix),
		Phone:    "555-0198",
		Password: "hash",
	}
	if err := store.InsertUser(ctx, dup); !errors.Is(err, db.ErrDuplicateUser) {
		t.Fatalf("expected duplicate error for reused user_id, got %v", err)
	}

	dup = &models.User{
		UserID:   fmt.Sprintf("other-%s", suffix),
		Name:     "Other",
		Email:    user.Email,
		Phone:    "555-0198",
		Password: "hash",
	}
	if err := store.InsertUser(ctx, dup); !errors.Is(err, db.ErrDuplicateUser) {
		t.Fatalf("expected duplicate error for reused email, got %v", err)
	}

	if _, err := store.FindByIdentifier(ctx, fmt.Sprintf("missing-%s", suffix)); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown identifier, got %v", err)
	}
}

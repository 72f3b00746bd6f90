// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/animal-portrait/models"
)

// ErrDuplicate is returned when a row collides with a unique constraint
var ErrDuplicate = errors.New("already exists")

// Store is the external tabular store the wizard and landing pages write to.
// Every method inserts one row and returns the identifier assigned to it.
type Store interface {
	CreateUser(ctx context.Context, u models.User) (string, error)
	SaveGeneratedPhoto(ctx context.Context, p models.GeneratedPhoto) (string, error)
	SavePurchase(ctx context.Context, p models.Purchase) (string, error)
	JoinWaitingList(ctx context.Context, e models.WaitingListEntry) (string, error)
}

// SQLStore implements Store on top of database/sql.
// Queries use $n placeholders, which both lib/pq and modernc sqlite accept.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, now: time.Now}
}

func (s *SQLStore) CreateUser(ctx context.Context, u models.User) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, full_name, email, created_at)
		VALUES ($1, $2, $3, $4)
	`, id, u.FullName, u.Email, s.now().UTC())
	if err != nil {
		return "", wrap("users", err)
	}
	return id, nil
}

func (s *SQLStore) SaveGeneratedPhoto(ctx context.Context, p models.GeneratedPhoto) (string, error) {
	id := uuid.NewString()
	status := p.Status
	if status == "" {
		status = models.PhotoStatusGenerated
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generated_photos (id, user_id, animal, photo_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, nullable(p.UserID), p.Animal, p.PhotoURL, status, s.now().UTC())
	if err != nil {
		return "", wrap("generated_photos", err)
	}
	return id, nil
}

func (s *SQLStore) SavePurchase(ctx context.Context, p models.Purchase) (string, error) {
	id := uuid.NewString()
	status := p.Status
	if status == "" {
		status = models.PurchaseStatusCompleted
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO purchases (id, user_id, tier, price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, nullable(p.UserID), p.Tier, p.Price, status, s.now().UTC())
	if err != nil {
		return "", wrap("purchases", err)
	}
	return id, nil
}

func (s *SQLStore) JoinWaitingList(ctx context.Context, e models.WaitingListEntry) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO waiting_list (id, email, name, country, source, ip_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, e.Email, e.Name, e.Country, e.Source, e.IPHash, s.now().UTC())
	if err != nil {
		return "", wrap("waiting_list", err)
	}
	return id, nil
}

// nullable maps an empty identifier to SQL NULL
func nullable(id string) any {
	if id == "" {
		return nil
	}
	return id
}

func wrap(table string, err error) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("insert into %s: %w: %w", table, ErrDuplicate, err)
	}
	return fmt.Errorf("insert into %s: %w", table, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE"))
	}
	return false
}

// Message returns the human-readable part of a store error, suitable for
// showing to the user as-is
func Message(err error) string {
	if err == nil {
		return ""
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Message
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Error()
	}
	if inner := errors.Unwrap(err); inner != nil {
		return inner.Error()
	}
	return err.Error()
}

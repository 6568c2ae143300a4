// Package roles records PROFESSIONAL role grants for the user service to
// read. Grants made inside a verification decision join its transaction.
package roles

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	id "mindcare/pkg/domain"
	txcontext "mindcare/pkg/platform/tx"
)

// InMemory keeps grants in a map.
type InMemory struct {
	mu     sync.RWMutex
	grants map[id.UserID]bool
}

func NewInMemory() *InMemory {
	return &InMemory{grants: make(map[id.UserID]bool)}
}

func (s *InMemory) GrantProfessional(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[userID] = true
	return nil
}

func (s *InMemory) RevokeProfessional(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, userID)
	return nil
}

func (s *InMemory) IsProfessional(_ context.Context, userID id.UserID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grants[userID], nil
}

// PostgresStore keeps grants in professional_roles. A revoked grant keeps its
// row with revoked_at set.
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) GrantProfessional(ctx context.Context, userID id.UserID) error {
	query := `
		INSERT INTO professional_roles (user_id, granted_at, revoked_at)
		VALUES ($1, $2, NULL)
		ON CONFLICT (user_id) DO UPDATE SET granted_at = EXCLUDED.granted_at, revoked_at = NULL
	`
	if _, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(userID), s.now()); err != nil {
		return fmt.Errorf("grant professional role: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeProfessional(ctx context.Context, userID id.UserID) error {
	query := `UPDATE professional_roles SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`
	if _, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(userID), s.now()); err != nil {
		return fmt.Errorf("revoke professional role: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsProfessional(ctx context.Context, userID id.UserID) (bool, error) {
	var active bool
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM professional_roles WHERE user_id = $1 AND revoked_at IS NULL)`,
		uuid.UUID(userID),
	).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("check professional role: %w", err)
	}
	return active, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/lessonscout/internal/core/domain"
	"github.com/custodia-labs/lessonscout/internal/core/ports/driven"
)

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

const sessionColumns = `s.id, s.user_id, s.query, s.grade, s.status, s.created_at, s.updated_at, r.payload`

// Create stores a new pending session.
func (s *sessionStore) Create(ctx context.Context, session *domain.SearchSession) error {
	if session == nil {
		return domain.ErrInvalidInput
	}
	if session.Status != domain.SessionPending {
		return fmt.Errorf("%w: new session must be pending, got %s", domain.ErrInvalidTransition, session.Status)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO search_sessions (id, user_id, query, grade, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, session.ID, session.UserID, session.Query, int(session.Grade), string(session.Status),
		session.CreatedAt.UTC(), session.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID, including its result when completed.
func (s *sessionStore) Get(ctx context.Context, id string) (*domain.SearchSession, error) {
	return getSession(ctx, s.store.db, id)
}

// ListByStatus returns sessions in a status, oldest first.
func (s *sessionStore) ListByStatus(ctx context.Context, status domain.SessionStatus) ([]domain.SearchSession, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM search_sessions s LEFT JOIN search_results r ON r.session_id = s.id
		WHERE s.status = ?
		ORDER BY s.created_at ASC
	`, string(status))
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()
	return scanSessionRows(rows)
}

// ListByUser returns a user's sessions, most recent first.
func (s *sessionStore) ListByUser(ctx context.Context, userID string, limit int) ([]domain.SearchSession, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM search_sessions s LEFT JOIN search_results r ON r.session_id = s.id
		WHERE s.user_id = ?
		ORDER BY s.created_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()
	return scanSessionRows(rows)
}

// Transition moves a session to a non-completed status.
func (s *sessionStore) Transition(
	ctx context.Context,
	id string,
	to domain.SessionStatus,
	at time.Time,
) (*domain.SearchSession, error) {
	if to == domain.SessionCompleted {
		return nil, fmt.Errorf("%w: use Complete to finish a session", domain.ErrInvalidTransition)
	}

	var updated *domain.SearchSession
	err := s.store.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkStatus(ctx, tx, id, to); err != nil {
			return err
		}
		if err := updateStatus(ctx, tx, id, to, at); err != nil {
			return err
		}
		var err error
		updated, err = getSession(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Complete writes the result row and the completed status in one transaction.
func (s *sessionStore) Complete(
	ctx context.Context,
	id string,
	result []domain.ResultItem,
	at time.Time,
) (*domain.SearchSession, error) {
	payload, err := marshalItems(result)
	if err != nil {
		return nil, err
	}

	var updated *domain.SearchSession
	err = s.store.inTx(ctx, func(tx *sql.Tx) error {
		if err := checkStatus(ctx, tx, id, domain.SessionCompleted); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO search_results (session_id, payload) VALUES (?, ?)", id, payload); err != nil {
			return fmt.Errorf("saving result: %w", err)
		}
		if err := updateStatus(ctx, tx, id, domain.SessionCompleted, at); err != nil {
			return err
		}
		var err error
		updated, err = getSession(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getSession(ctx context.Context, q querier, id string) (*domain.SearchSession, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM search_sessions s LEFT JOIN search_results r ON r.session_id = s.id
		WHERE s.id = ?
	`, id)
	return scanSession(row)
}

func checkStatus(ctx context.Context, tx *sql.Tx, id string, to domain.SessionStatus) error {
	var current string
	err := tx.QueryRowContext(ctx, "SELECT status FROM search_sessions WHERE id = ?", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading session status: %w", err)
	}
	return domain.CheckTransition(domain.SessionStatus(current), to)
}

func updateStatus(ctx context.Context, tx *sql.Tx, id string, to domain.SessionStatus, at time.Time) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE search_sessions SET status = ?, updated_at = ? WHERE id = ?",
		string(to), at.UTC(), id); err != nil {
		return fmt.Errorf("updating session status: %w", err)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.SearchSession, error) {
	var session domain.SearchSession
	var grade int
	var status string
	var payload sql.NullString
	if err := row.Scan(&session.ID, &session.UserID, &session.Query, &grade, &status,
		&session.CreatedAt, &session.UpdatedAt, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	session.Grade = domain.GradeFilter(grade)
	session.Status = domain.SessionStatus(status)

	if payload.Valid {
		items, err := unmarshalItems(payload.String)
		if err != nil {
			return nil, err
		}
		session.Result = items
	}
	return &session, nil
}

func scanSessionRows(rows *sql.Rows) ([]domain.SearchSession, error) {
	sessions := make([]domain.SearchSession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

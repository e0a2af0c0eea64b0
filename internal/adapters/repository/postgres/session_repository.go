package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/teamweek/api/internal/core/domain"
	"github.com/teamweek/api/internal/core/ports"
)

// lifecycleLockKey names the advisory lock serializing session
// lifecycle transitions across concurrent triggers.
const lifecycleLockKey = "vote-session-lifecycle"

const sessionColumns = `id, week_start_date, start_time, end_time, is_active, is_completed, created_at, updated_at`

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sessionRepository struct {
	db *sql.DB
	q  querier
}

func NewSessionRepository(db *sql.DB) ports.SessionRepository {
	return &sessionRepository{
		db: db,
		q:  db,
	}
}

func (r *sessionRepository) FindActiveSessions(ctx context.Context) ([]*domain.VoteSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM vote_sessions
		WHERE is_active = TRUE
		ORDER BY id DESC
	`
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.VoteSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

func (r *sessionRepository) FindSessionByWeek(ctx context.Context, weekStart time.Time) (*domain.VoteSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM vote_sessions
		WHERE week_start_date = $1 AND is_active = FALSE AND is_completed = FALSE
		LIMIT 1
	`
	session, err := scanSession(r.q.QueryRowContext(ctx, query, weekDate(weekStart)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session by week: %w", err)
	}
	return session, nil
}

func (r *sessionRepository) UpdateSessionState(ctx context.Context, id int64, update ports.SessionStateUpdate) (*domain.VoteSession, error) {
	query := `
		UPDATE vote_sessions
		SET is_active = $2,
		    is_completed = $3,
		    start_time = COALESCE($4, start_time),
		    end_time = COALESCE($5, end_time),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + sessionColumns + `
	`
	session, err := scanSession(r.q.QueryRowContext(ctx, query,
		id, update.IsActive, update.IsCompleted, update.StartTime, update.EndTime,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to update session state: %w", err)
	}
	return session, nil
}

func (r *sessionRepository) InsertSession(ctx context.Context, session *domain.VoteSession) (*domain.VoteSession, error) {
	query := `
		INSERT INTO vote_sessions (week_start_date, start_time, end_time, is_active, is_completed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + sessionColumns + `
	`
	stored, err := scanSession(r.q.QueryRowContext(ctx, query,
		weekDate(session.WeekStartDate), session.StartTime, session.EndTime, session.IsActive, session.IsCompleted,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	return stored, nil
}

func (r *sessionRepository) FindCurrentOpenSession(ctx context.Context, includeVotes bool) (*domain.VoteSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM vote_sessions
		WHERE is_active = TRUE AND is_completed = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	session, err := scanSession(r.q.QueryRowContext(ctx, query))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current open session: %w", err)
	}

	if includeVotes {
		votes, err := r.fetchVotes(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		session.Votes = votes
	}
	return session, nil
}

// WithLifecycleLock opens a transaction, takes the lifecycle advisory
// lock and runs fn against a transaction-scoped repository. The lock is
// released with the transaction on commit or rollback.
func (r *sessionRepository) WithLifecycleLock(ctx context.Context, fn func(repo ports.SessionRepository) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lifecycleLockKey); err != nil {
		return fmt.Errorf("failed to acquire lifecycle lock: %w", err)
	}

	if err := fn(&sessionRepository{db: r.db, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *sessionRepository) fetchVotes(ctx context.Context, sessionID int64) ([]domain.Vote, error) {
	query := `
		SELECT v.id, v.session_id, v.choice, v.created_at, u.id, u.name
		FROM votes v
		JOIN users u ON u.id = v.user_id
		WHERE v.session_id = $1
		ORDER BY v.created_at
	`
	rows, err := r.q.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		var vote domain.Vote
		if err := rows.Scan(&vote.ID, &vote.SessionID, &vote.Choice, &vote.CreatedAt, &vote.User.ID, &vote.User.Name); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*domain.VoteSession, error) {
	var session domain.VoteSession
	err := row.Scan(
		&session.ID, &session.WeekStartDate, &session.StartTime, &session.EndTime,
		&session.IsActive, &session.IsCompleted, &session.CreatedAt, &session.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	return &session, nil
}

// weekDate renders a week anchor as its KST calendar date. The column
// is a DATE, so comparing with a raw timestamp would shift the day by
// the server's session timezone.
func weekDate(t time.Time) string {
	return t.In(domain.KST).Format("2006-01-02")
}

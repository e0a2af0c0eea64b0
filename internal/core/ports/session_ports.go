package ports

import (
	"context"
	"time"

	"github.com/teamweek/api/internal/core/domain"
)

// Clock supplies the current time rendered in the operating timezone.
// Injected so lifecycle decisions can be tested against fixed instants.
type Clock interface {
	Now() time.Time
}

// SessionStateUpdate carries a state transition for an existing
// session. Nil StartTime/EndTime leave the stored values untouched.
type SessionStateUpdate struct {
	IsActive    bool
	IsCompleted bool
	StartTime   *time.Time
	EndTime     *time.Time
}

type SessionRepository interface {
	// FindActiveSessions returns every session with isActive=true,
	// most recently created first (id descending).
	FindActiveSessions(ctx context.Context) ([]*domain.VoteSession, error)

	// FindSessionByWeek returns the inactive, not-yet-completed session
	// for the given week start date, or nil when none exists.
	FindSessionByWeek(ctx context.Context, weekStart time.Time) (*domain.VoteSession, error)

	UpdateSessionState(ctx context.Context, id int64, update SessionStateUpdate) (*domain.VoteSession, error)

	InsertSession(ctx context.Context, session *domain.VoteSession) (*domain.VoteSession, error)

	// FindCurrentOpenSession returns the newest session with
	// isActive=true and isCompleted=false, or nil when none exists.
	// With includeVotes the session's votes and their user projections
	// are loaded in the same read.
	FindCurrentOpenSession(ctx context.Context, includeVotes bool) (*domain.VoteSession, error)

	// WithLifecycleLock runs fn against a repository view that holds an
	// exclusive lifecycle lock for the duration of the call. Writes made
	// inside fn are committed atomically when fn returns nil and rolled
	// back otherwise. Concurrent callers serialize on the lock.
	WithLifecycleLock(ctx context.Context, fn func(repo SessionRepository) error) error
}

type SessionService interface {
	DeactivateExpiredSessions(ctx context.Context) (int, error)
	EnsureSingleActiveSession(ctx context.Context) error
	GetActiveSession(ctx context.Context, includeVotes bool) (*domain.VoteSession, error)
	CreateNextWeekSession(ctx context.Context) (*domain.VoteSession, error)
	ValidateAndFixSessionState(ctx context.Context) error
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teamweek/api/internal/core/domain"
	"github.com/teamweek/api/internal/core/ports"
)

type sessionService struct {
	repo  ports.SessionRepository
	clock ports.Clock
}

func NewSessionService(repo ports.SessionRepository, clock ports.Clock) ports.SessionService {
	return &sessionService{
		repo:  repo,
		clock: clock,
	}
}

// DeactivateExpiredSessions closes every active session whose deadline
// has passed and returns how many were closed. Each transition is
// independent; re-running finds nothing left to expire.
func (s *sessionService) DeactivateExpiredSessions(ctx context.Context) (int, error) {
	return s.deactivateExpired(ctx, s.repo)
}

func (s *sessionService) deactivateExpired(ctx context.Context, repo ports.SessionRepository) (int, error) {
	sessions, err := repo.FindActiveSessions(ctx)
	if err != nil {
		slog.Error("failed to fetch active sessions", "op", "DeactivateExpiredSessions", "error", err)
		return 0, fmt.Errorf("failed to fetch active sessions: %w", err)
	}

	now := s.clock.Now()
	count := 0
	for _, session := range sessions {
		if !session.Expired(now) {
			continue
		}
		_, err := repo.UpdateSessionState(ctx, session.ID, ports.SessionStateUpdate{
			IsActive:    false,
			IsCompleted: true,
		})
		if err != nil {
			slog.Error("failed to deactivate expired session", "op", "DeactivateExpiredSessions", "sessionId", session.ID, "error", err)
			return count, fmt.Errorf("failed to deactivate session %d: %w", session.ID, err)
		}
		count++
	}
	return count, nil
}

// EnsureSingleActiveSession keeps the most recently created active
// session and archives the rest. Finding more than one is a drift
// condition, warned about and corrected rather than rejected.
func (s *sessionService) EnsureSingleActiveSession(ctx context.Context) error {
	return s.repo.WithLifecycleLock(ctx, func(repo ports.SessionRepository) error {
		return s.ensureSingleActive(ctx, repo)
	})
}

func (s *sessionService) ensureSingleActive(ctx context.Context, repo ports.SessionRepository) error {
	sessions, err := repo.FindActiveSessions(ctx)
	if err != nil {
		slog.Error("failed to fetch active sessions", "op", "EnsureSingleActiveSession", "error", err)
		return fmt.Errorf("failed to fetch active sessions: %w", err)
	}
	if len(sessions) <= 1 {
		return nil
	}

	slog.Warn("multiple active sessions found", "count", len(sessions), "keptSessionId", sessions[0].ID)

	for _, stale := range sessions[1:] {
		_, err := repo.UpdateSessionState(ctx, stale.ID, ports.SessionStateUpdate{
			IsActive:    false,
			IsCompleted: true,
		})
		if err != nil {
			slog.Error("failed to archive duplicate session", "op", "EnsureSingleActiveSession", "sessionId", stale.ID, "error", err)
			return fmt.Errorf("failed to archive session %d: %w", stale.ID, err)
		}
	}
	return nil
}

// GetActiveSession repairs expiry and duplicate drift, then returns the
// current open session, or nil when no window is open.
func (s *sessionService) GetActiveSession(ctx context.Context, includeVotes bool) (*domain.VoteSession, error) {
	if _, err := s.DeactivateExpiredSessions(ctx); err != nil {
		return nil, err
	}
	if err := s.EnsureSingleActiveSession(ctx); err != nil {
		return nil, err
	}

	session, err := s.repo.FindCurrentOpenSession(ctx, includeVotes)
	if err != nil {
		slog.Error("failed to fetch current open session", "op", "GetActiveSession", "error", err)
		return nil, fmt.Errorf("failed to fetch current open session: %w", err)
	}
	return session, nil
}

// CreateNextWeekSession opens the polling window for the upcoming week.
// While a session is already open it is returned unchanged; a dormant
// row for the target week is reactivated instead of inserting a
// duplicate. The whole check-then-act sequence runs under the
// lifecycle lock so concurrent triggers cannot create two sessions for
// the same week.
func (s *sessionService) CreateNextWeekSession(ctx context.Context) (*domain.VoteSession, error) {
	now := s.clock.Now()
	weekStart := domain.StartOfNextWeek(now)
	// Discussion opens on the Monday preceding the polled week, at 00:01.
	startTime := domain.StartOfWeek(now).Add(time.Minute)
	endTime := domain.EndOfWeek(weekStart)

	var result *domain.VoteSession
	err := s.repo.WithLifecycleLock(ctx, func(repo ports.SessionRepository) error {
		open, err := repo.FindCurrentOpenSession(ctx, false)
		if err != nil {
			slog.Error("failed to check for open session", "op", "CreateNextWeekSession", "error", err)
			return fmt.Errorf("failed to check for open session: %w", err)
		}
		if open != nil {
			result = open
			return nil
		}

		reusable, err := repo.FindSessionByWeek(ctx, weekStart)
		if err != nil {
			slog.Error("failed to look up session for week", "op", "CreateNextWeekSession", "weekStart", weekStart, "error", err)
			return fmt.Errorf("failed to look up session for week: %w", err)
		}
		if reusable != nil {
			reactivated, err := repo.UpdateSessionState(ctx, reusable.ID, ports.SessionStateUpdate{
				IsActive:    true,
				IsCompleted: false,
				StartTime:   &startTime,
				EndTime:     &endTime,
			})
			if err != nil {
				slog.Error("failed to reactivate session", "op", "CreateNextWeekSession", "sessionId", reusable.ID, "error", err)
				return fmt.Errorf("failed to reactivate session %d: %w", reusable.ID, err)
			}
			slog.Info("reactivated dormant session", "sessionId", reactivated.ID, "weekStart", weekStart)
			result = reactivated
			return nil
		}

		created, err := repo.InsertSession(ctx, &domain.VoteSession{
			WeekStartDate: weekStart,
			StartTime:     startTime,
			EndTime:       &endTime,
			IsActive:      true,
			IsCompleted:   false,
		})
		if err != nil {
			slog.Error("failed to insert session", "op", "CreateNextWeekSession", "weekStart", weekStart, "error", err)
			return fmt.Errorf("failed to insert session: %w", err)
		}
		slog.Info("created next week session", "sessionId", created.ID, "weekStart", weekStart)
		result = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ValidateAndFixSessionState is the composite self-healing entrypoint:
// expire overdue sessions, then collapse duplicates, atomically.
func (s *sessionService) ValidateAndFixSessionState(ctx context.Context) error {
	return s.repo.WithLifecycleLock(ctx, func(repo ports.SessionRepository) error {
		if _, err := s.deactivateExpired(ctx, repo); err != nil {
			return err
		}
		return s.ensureSingleActive(ctx, repo)
	})
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// VoteSession is one weekly availability polling window. Sessions are
// created for the upcoming week, stay active until their deadline, and
// end up completed; completed sessions are never reopened.
type VoteSession struct {
	ID            int64      `json:"id"`
	WeekStartDate time.Time  `json:"weekStartDate"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	IsActive      bool       `json:"isActive"`
	IsCompleted   bool       `json:"isCompleted"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Votes         []Vote     `json:"votes,omitempty"`
}

// Deadline returns the effective voting deadline: the explicit EndTime
// when one was set at creation, otherwise end of Friday of the polled
// week.
func (s *VoteSession) Deadline() time.Time {
	if s.EndTime != nil {
		return *s.EndTime
	}
	return EndOfWeek(s.WeekStartDate)
}

// Expired reports whether the deadline has passed at the given instant.
// A session is still live at the exact instant of its deadline.
func (s *VoteSession) Expired(now time.Time) bool {
	return s.Deadline().Before(now)
}

type Vote struct {
	ID        uuid.UUID `json:"id"`
	SessionID int64     `json:"sessionId"`
	User      VoteUser  `json:"user"`
	Choice    string    `json:"choice"`
	CreatedAt time.Time `json:"createdAt"`
}

// VoteUser is the minimal user projection loaded alongside votes.
type VoteUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

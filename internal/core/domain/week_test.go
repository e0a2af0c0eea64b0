package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func kst(year int, month time.Month, day, hour, min, sec, ms int) time.Time {
	return time.Date(year, month, day, hour, min, sec, ms*int(time.Millisecond), KST)
}

func TestStartOfWeek(t *testing.T) {
	monday := kst(2025, time.November, 3, 0, 0, 0, 0)

	tests := []struct {
		name string
		now  time.Time
	}{
		{"monday maps to its own midnight", kst(2025, time.November, 3, 1, 0, 0, 0)},
		{"tuesday", kst(2025, time.November, 4, 12, 30, 0, 0)},
		{"friday", kst(2025, time.November, 7, 23, 59, 59, 999)},
		{"saturday", kst(2025, time.November, 8, 9, 0, 0, 0)},
		{"sunday belongs to the previous monday's week", kst(2025, time.November, 9, 23, 0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, StartOfWeek(tt.now).Equal(monday))
		})
	}
}

func TestStartOfWeekNormalizesZone(t *testing.T) {
	// 2025-11-02 20:00 UTC is already Monday 05:00 in KST.
	now := time.Date(2025, time.November, 2, 20, 0, 0, 0, time.UTC)

	got := StartOfWeek(now)

	assert.True(t, got.Equal(kst(2025, time.November, 3, 0, 0, 0, 0)))
}

func TestStartOfNextWeek(t *testing.T) {
	now := kst(2025, time.November, 5, 10, 0, 0, 0)

	assert.True(t, StartOfNextWeek(now).Equal(kst(2025, time.November, 10, 0, 0, 0, 0)))
}

func TestEndOfWeek(t *testing.T) {
	monday := kst(2025, time.November, 3, 0, 0, 0, 0)

	assert.True(t, EndOfWeek(monday).Equal(kst(2025, time.November, 7, 23, 59, 59, 999)))
}

func TestSessionExpired(t *testing.T) {
	deadline := kst(2025, time.November, 7, 23, 59, 59, 999)
	session := &VoteSession{
		WeekStartDate: kst(2025, time.November, 3, 0, 0, 0, 0),
	}

	assert.False(t, session.Expired(deadline), "still live at the exact deadline")
	assert.True(t, session.Expired(deadline.Add(time.Millisecond)))
	assert.False(t, session.Expired(kst(2025, time.November, 5, 12, 0, 0, 0)))
}

func TestSessionExpiredHonorsEndTimeOverride(t *testing.T) {
	override := kst(2025, time.November, 5, 18, 0, 0, 0)
	session := &VoteSession{
		WeekStartDate: kst(2025, time.November, 3, 0, 0, 0, 0),
		EndTime:       &override,
	}

	assert.True(t, session.Expired(kst(2025, time.November, 6, 0, 0, 0, 0)))
	assert.False(t, session.Expired(kst(2025, time.November, 5, 17, 0, 0, 0)))
}

package services

import (
	"time"

	"github.com/teamweek/api/internal/core/domain"
	"github.com/teamweek/api/internal/core/ports"
)

type kstClock struct{}

// NewKSTClock returns a Clock yielding the current instant rendered in
// the fixed operating timezone.
func NewKSTClock() ports.Clock {
	return kstClock{}
}

func (kstClock) Now() time.Time {
	return time.Now().In(domain.KST)
}

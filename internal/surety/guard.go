package surety

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightsurety/internal/domain"
)

func (e *Engine) IsOperational() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.operational
}

// SetOperationalStatus pauses or resumes every other mutating operation. Only the owner may
// call it, and it works while paused.
func (e *Engine) SetOperationalStatus(ctx context.Context, caller domain.Address, operational bool) ([]domain.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.params.Owner {
		return nil, fmt.Errorf("%w: %s is not the owner", domain.ErrUnauthorized, caller)
	}
	if e.operational == operational {
		return nil, nil
	}
	return e.commit(ctx, domain.Event{
		Type:        domain.EventOperationalStatusChanged,
		Actor:       caller,
		Operational: operational,
	})
}

func (e *Engine) requireOperational() error {
	if !e.operational {
		return domain.ErrNotOperational
	}
	return nil
}

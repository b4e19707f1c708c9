package surety

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/shopspring/decimal"
)

// Fund records an issuer's deposit. The issuer record is created on first funding.
func (e *Engine) Fund(ctx context.Context, issuer domain.Address, amount decimal.Decimal) ([]domain.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperational(); err != nil {
		return nil, err
	}
	if issuer.IsZero() {
		return nil, fmt.Errorf("%w: empty issuer", domain.ErrUnauthorized)
	}
	if amount.LessThan(e.params.MinFunding) {
		return nil, fmt.Errorf("%w: funding %s is below %s", domain.ErrInsufficientValue, amount, e.params.MinFunding)
	}
	if rec, ok := e.issuers[issuer]; ok && rec.funded {
		return nil, fmt.Errorf("%w: issuer %s is already funded", domain.ErrInvalidState, issuer)
	}

	return e.commit(ctx, domain.Event{
		Type:   domain.EventFunded,
		Actor:  issuer,
		Amount: amount,
	})
}

// RegisterIssuer admits newIssuer on behalf of requester. Below the admission threshold the
// admission is immediate; from then on each call is a vote and the issuer is admitted once
// half of the registered issuers, rounded up, have voted. Repeated votes are no-ops.
func (e *Engine) RegisterIssuer(ctx context.Context, requester, newIssuer domain.Address) ([]domain.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperational(); err != nil {
		return nil, err
	}
	if err := e.requireActiveIssuer(requester); err != nil {
		return nil, err
	}
	if newIssuer.IsZero() {
		return nil, fmt.Errorf("%w: empty issuer", domain.ErrInvalidState)
	}
	if rec, ok := e.issuers[newIssuer]; ok && rec.registered {
		return nil, fmt.Errorf("%w: issuer %s", domain.ErrDuplicateRegistration, newIssuer)
	}

	registered := domain.Event{
		Type:   domain.EventIssuerRegistered,
		Actor:  requester,
		Target: newIssuer,
	}
	if e.registeredCount < e.params.AdmissionThreshold {
		return e.commit(ctx, registered)
	}

	var votes map[domain.Address]struct{}
	if rec, ok := e.issuers[newIssuer]; ok {
		votes = rec.votes
	}
	if _, voted := votes[requester]; voted {
		return nil, nil
	}

	count := len(votes) + 1
	voted := domain.Event{
		Type:   domain.EventIssuerVoted,
		Actor:  requester,
		Target: newIssuer,
		Votes:  count,
	}
	if count >= admissionQuorum(e.registeredCount) {
		registered.Votes = count
		return e.commit(ctx, voted, registered)
	}
	return e.commit(ctx, voted)
}

// requireActiveIssuer checks that addr is registered and funded.
func (e *Engine) requireActiveIssuer(addr domain.Address) error {
	rec, ok := e.issuers[addr]
	if !ok || !rec.registered {
		return fmt.Errorf("%w: %s is not a registered issuer", domain.ErrUnauthorized, addr)
	}
	if !rec.funded {
		return fmt.Errorf("%w: %s", domain.ErrNotFunded, addr)
	}
	return nil
}

func (e *Engine) IsIssuerRegistered(addr domain.Address) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.issuers[addr]
	return ok && rec.registered
}

func (e *Engine) IsIssuerFunded(addr domain.Address) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	rec, ok := e.issuers[addr]
	return ok && rec.funded
}

func (e *Engine) RegisteredIssuerCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registeredCount
}

// Issuer returns the issuer's record. Unknown addresses yield a zero record.
func (e *Engine) Issuer(addr domain.Address) domain.Issuer {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := domain.Issuer{Address: addr}
	if rec, ok := e.issuers[addr]; ok {
		out.Registered = rec.registered
		out.Funded = rec.funded
		out.Votes = len(rec.votes)
	}
	return out
}

package surety

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// settlement builds the Credited events for every passenger insured on the flight. It runs
// only from the commit that finalizes the flight, which happens once per flight.
func (e *Engine) settlement(key domain.FlightKey) []domain.Event {
	var events []domain.Event
	for _, passenger := range e.passengers[key] {
		premium := e.premiums[key][passenger]
		if !premium.IsPositive() {
			continue
		}
		events = append(events, domain.Event{
			Type:      domain.EventCredited,
			Actor:     passenger,
			FlightKey: key,
			Amount:    premium.Mul(e.params.PayoutMultiplier),
		})
	}
	return events
}

func (e *Engine) CreditBalance(holder domain.Address) decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.credits[holder]
}

// Withdraw pays out the holder's whole credit. The Paid event is journaled together with the
// transfer before it is applied, so a failed payment leaves the balance untouched. The payer
// runs under the engine lock and must not call back into the engine.
func (e *Engine) Withdraw(ctx context.Context, holder domain.Address) ([]domain.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperational(); err != nil {
		return nil, err
	}
	amount := e.credits[holder]
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNothingToWithdraw, holder)
	}
	if e.escrow.LessThan(amount) {
		return nil, fmt.Errorf("%w: escrow %s cannot cover %s", domain.ErrInvalidState, e.escrow, amount)
	}

	m := e.mark()
	ev := e.stamp(domain.Event{
		Type:   domain.EventPaid,
		Actor:  holder,
		Amount: amount,
	})
	ev.ID = PayoutID(holder, ev.Seq)

	var err error
	if e.payer != nil {
		err = e.payer.Pay(ctx, ev)
	} else {
		err = e.journalEvents(ctx, []domain.Event{ev})
	}
	if err != nil {
		e.rewind(m)
		e.logger.Warn("payout failed, balance kept",
			zap.String("holder", holder.String()),
			zap.String("amount", amount.String()),
			zap.Stringer("payout_id", ev.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("pay %s: %w", holder, err)
	}

	e.apply(ev)
	events := []domain.Event{ev}
	e.notify(events)
	return events, nil
}

var payoutNamespace = uuid.MustParse("6f1c0d8e-3b52-4c1a-9e0f-5d7a2b9c4e11")

// PayoutID names the payout of holder's balance at seq. A withdrawal retried after an
// ambiguous payer error lands on the same seq and therefore the same ID.
func PayoutID(holder domain.Address, seq uint64) uuid.UUID {
	return uuid.NewSHA1(payoutNamespace, []byte(fmt.Sprintf("%s/%d", holder, seq)))
}

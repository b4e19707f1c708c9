// Package surety implements the flight-delay insurance state machine: issuer admission,
// flight and premium bookkeeping, the oracle response quorum and settlement.
//
// Every mutating call is serialized and either commits all of its events or none. Events are
// journaled before they are applied and state is only ever changed by applying them, so an
// engine can be rebuilt from its journal.
package surety

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier receives committed events in sequence order. It is called while the engine is
// locked and must not call back into the engine.
type Notifier interface {
	Notify(events []domain.Event)
}

type NotifierFunc func(events []domain.Event)

func (f NotifierFunc) Notify(events []domain.Event) { f(events) }

// Journal durably records events. A failed Append must leave nothing recorded.
type Journal interface {
	Append(ctx context.Context, events []domain.Event) error
}

// Payer transfers paid.Amount out of escrow to paid.Actor. Pay must journal paid in the same
// transaction as the transfer and must transfer at most once per paid.ID.
type Payer interface {
	Pay(ctx context.Context, paid domain.Event) error
}

type Option func(*Engine)

func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

func WithIndexSource(src IndexSource) Option {
	return func(e *Engine) { e.indexes = src }
}

func WithJournal(j Journal) Option {
	return func(e *Engine) { e.journal = j }
}

func WithPayer(p Payer) Option {
	return func(e *Engine) { e.payer = p }
}

func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifiers = append(e.notifiers, n) }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

type issuerRecord struct {
	registered bool
	funded     bool
	votes      map[domain.Address]struct{}
}

type requestKey struct {
	flight    domain.FlightKey
	timestamp int64
}

type request struct {
	index     uint8
	requester domain.Address
	open      bool
	responded map[domain.Address]struct{}
	byStatus  map[domain.FlightStatus][]domain.Address
}

type Engine struct {
	mu sync.Mutex

	params      Params
	operational bool

	issuers         map[domain.Address]*issuerRecord
	registeredCount int

	flights    map[domain.FlightKey]*domain.Flight
	flightKeys []domain.FlightKey

	premiums   map[domain.FlightKey]map[domain.Address]decimal.Decimal
	passengers map[domain.FlightKey][]domain.Address
	credits    map[domain.Address]decimal.Decimal
	escrow     decimal.Decimal

	oracles  map[domain.Address][domain.IndexesPerOracle]uint8
	requests map[requestKey]*request

	seq      uint64
	lastTime time.Time

	clock     func() time.Time
	indexes   IndexSource
	journal   Journal
	payer     Payer
	notifiers []Notifier
	logger    *zap.Logger
}

// New creates an operational engine whose only registered issuer is params.FirstIssuer.
func New(params Params, opts ...Option) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	e := &Engine{
		params:      params,
		operational: true,
		issuers:     make(map[domain.Address]*issuerRecord),
		flights:     make(map[domain.FlightKey]*domain.Flight),
		premiums:    make(map[domain.FlightKey]map[domain.Address]decimal.Decimal),
		passengers:  make(map[domain.FlightKey][]domain.Address),
		credits:     make(map[domain.Address]decimal.Decimal),
		escrow:      decimal.Zero,
		oracles:     make(map[domain.Address][domain.IndexesPerOracle]uint8),
		requests:    make(map[requestKey]*request),
		clock:       time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.indexes == nil {
		e.indexes = NewKeccakIndexSource(nil)
	}

	first := e.issuer(params.FirstIssuer)
	first.registered = true
	e.registeredCount = 1
	return e, nil
}

// Restore replays journaled events into a fresh engine. Events must be contiguous from 1.
func (e *Engine) Restore(events []domain.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.seq != 0 {
		return errors.New("restore requires a fresh engine")
	}
	for _, ev := range events {
		if ev.Seq != e.seq+1 {
			return fmt.Errorf("event sequence gap: want %d, got %d", e.seq+1, ev.Seq)
		}
		e.apply(ev)
		e.seq = ev.Seq
		if ev.OccurredAt.After(e.lastTime) {
			e.lastTime = ev.OccurredAt
		}
	}
	e.logger.Info("engine restored", zap.Int("events", len(events)), zap.Uint64("seq", e.seq))
	return nil
}

func (e *Engine) Params() Params {
	return e.params
}

// Seq returns the sequence number of the last committed event.
func (e *Engine) Seq() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}

// now never goes backwards even if the clock does.
func (e *Engine) now() time.Time {
	t := e.clock()
	if t.Before(e.lastTime) {
		return e.lastTime
	}
	e.lastTime = t
	return t
}

func (e *Engine) stamp(ev domain.Event) domain.Event {
	e.seq++
	ev.Seq = e.seq
	ev.ID = uuid.New()
	ev.OccurredAt = e.now()
	return ev
}

// mark is the sequence and clock position a failed commit rewinds to.
type mark struct {
	seq      uint64
	lastTime time.Time
}

func (e *Engine) mark() mark {
	return mark{seq: e.seq, lastTime: e.lastTime}
}

func (e *Engine) rewind(m mark) {
	e.seq = m.seq
	e.lastTime = m.lastTime
}

// commit journals a batch of already validated events, then applies them and notifies
// subscribers. If the journal rejects the batch nothing is applied and the sequence is
// rewound, so the journal never has gaps.
func (e *Engine) commit(ctx context.Context, events ...domain.Event) ([]domain.Event, error) {
	m := e.mark()
	committed := make([]domain.Event, 0, len(events))
	for _, ev := range events {
		committed = append(committed, e.stamp(ev))
	}
	if err := e.journalEvents(ctx, committed); err != nil {
		e.rewind(m)
		return nil, err
	}
	for _, ev := range committed {
		e.apply(ev)
	}
	e.notify(committed)
	return committed, nil
}

func (e *Engine) journalEvents(ctx context.Context, events []domain.Event) error {
	if e.journal == nil {
		return nil
	}
	if err := e.journal.Append(ctx, events); err != nil {
		e.logger.Error("failed to journal events",
			zap.Uint64("first_seq", events[0].Seq),
			zap.Int("count", len(events)),
			zap.Error(err),
		)
		return fmt.Errorf("journal events: %w", err)
	}
	return nil
}

func (e *Engine) notify(events []domain.Event) {
	for _, ev := range events {
		e.logger.Debug("event committed",
			zap.Uint64("seq", ev.Seq),
			zap.String("type", string(ev.Type)),
			zap.String("actor", ev.Actor.String()),
		)
	}
	for _, n := range e.notifiers {
		n.Notify(events)
	}
}

func (e *Engine) apply(ev domain.Event) {
	switch ev.Type {
	case domain.EventOperationalStatusChanged:
		e.operational = ev.Operational

	case domain.EventFunded:
		e.issuer(ev.Actor).funded = true
		e.escrow = e.escrow.Add(ev.Amount)

	case domain.EventIssuerVoted:
		rec := e.issuer(ev.Target)
		if rec.votes == nil {
			rec.votes = make(map[domain.Address]struct{})
		}
		rec.votes[ev.Actor] = struct{}{}

	case domain.EventIssuerRegistered:
		rec := e.issuer(ev.Target)
		rec.registered = true
		rec.votes = nil
		e.registeredCount++

	case domain.EventFlightRegistered:
		e.flights[ev.FlightKey] = &domain.Flight{
			Key:         ev.FlightKey,
			Code:        ev.FlightCode,
			Departure:   ev.Departure,
			Destination: ev.Destination,
			Timestamp:   ev.Timestamp,
			Price:       ev.Price,
			Issuer:      ev.Actor,
			Status:      domain.StatusUnknown,
			UpdatedAt:   ev.OccurredAt,
		}
		e.flightKeys = append(e.flightKeys, ev.FlightKey)

	case domain.EventInsurancePurchased:
		byPassenger, ok := e.premiums[ev.FlightKey]
		if !ok {
			byPassenger = make(map[domain.Address]decimal.Decimal)
			e.premiums[ev.FlightKey] = byPassenger
		}
		if _, seen := byPassenger[ev.Actor]; !seen {
			e.passengers[ev.FlightKey] = append(e.passengers[ev.FlightKey], ev.Actor)
		}
		byPassenger[ev.Actor] = ev.Amount
		e.escrow = e.escrow.Add(ev.Value)

	case domain.EventOracleRegistered:
		e.oracles[ev.Actor] = ev.Indexes
		e.escrow = e.escrow.Add(ev.Amount)

	case domain.EventOracleRequest:
		rk := requestKey{ev.FlightKey, ev.Timestamp}
		if _, exists := e.requests[rk]; exists {
			// re-announcement of an open request
			break
		}
		e.requests[rk] = &request{
			index:     ev.Index,
			requester: ev.Actor,
			open:      true,
			responded: make(map[domain.Address]struct{}),
			byStatus:  make(map[domain.FlightStatus][]domain.Address),
		}

	case domain.EventOracleReport:
		if req, ok := e.requests[requestKey{ev.FlightKey, ev.Timestamp}]; ok {
			req.responded[ev.Actor] = struct{}{}
			req.byStatus[ev.Status] = append(req.byStatus[ev.Status], ev.Actor)
		}

	case domain.EventFlightStatusUpdated:
		if f, ok := e.flights[ev.FlightKey]; ok {
			f.Status = ev.Status
			f.UpdatedAt = ev.OccurredAt
		}
		if req, ok := e.requests[requestKey{ev.FlightKey, ev.Timestamp}]; ok {
			req.open = false
		}

	case domain.EventCredited:
		e.credits[ev.Actor] = e.credits[ev.Actor].Add(ev.Amount)

	case domain.EventPaid:
		e.credits[ev.Actor] = decimal.Zero
		e.escrow = e.escrow.Sub(ev.Amount)
	}
}

func (e *Engine) issuer(addr domain.Address) *issuerRecord {
	rec, ok := e.issuers[addr]
	if !ok {
		rec = &issuerRecord{}
		e.issuers[addr] = rec
	}
	return rec
}

// Escrow is the value currently held by the engine.
func (e *Engine) Escrow() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.escrow
}

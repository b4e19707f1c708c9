package surety

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/shopspring/decimal"
)

type RegisterFlightInput struct {
	Code        string
	Timestamp   int64
	Price       decimal.Decimal
	Departure   string
	Destination string
}

func (in RegisterFlightInput) validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return fmt.Errorf("%w: flight code is required", domain.ErrInvalidState)
	}
	if strings.TrimSpace(in.Destination) == "" {
		return fmt.Errorf("%w: destination is required", domain.ErrInvalidState)
	}
	if in.Timestamp <= 0 {
		return fmt.Errorf("%w: timestamp must be positive", domain.ErrInvalidState)
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidState)
	}
	return nil
}

func (e *Engine) RegisterFlight(ctx context.Context, issuer domain.Address, in RegisterFlightInput) (domain.FlightKey, []domain.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := domain.NewFlightKey(in.Code, in.Destination, in.Timestamp)
	if err := e.requireOperational(); err != nil {
		return key, nil, err
	}
	if err := e.requireActiveIssuer(issuer); err != nil {
		return key, nil, err
	}
	if err := in.validate(); err != nil {
		return key, nil, err
	}
	if _, ok := e.flights[key]; ok {
		return key, nil, fmt.Errorf("%w: flight %s", domain.ErrDuplicateRegistration, key)
	}

	events, err := e.commit(ctx, domain.Event{
		Type:        domain.EventFlightRegistered,
		Actor:       issuer,
		FlightKey:   key,
		FlightCode:  in.Code,
		Departure:   in.Departure,
		Destination: in.Destination,
		Timestamp:   in.Timestamp,
		Price:       in.Price,
	})
	return key, events, err
}

// BuyInsurance records the passenger's premium, capped at the premium ceiling. The whole
// value is escrowed; only the capped amount is insured. A later purchase replaces the
// passenger's premium on that flight.
func (e *Engine) BuyInsurance(ctx context.Context, passenger domain.Address, key domain.FlightKey, value decimal.Decimal) ([]domain.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperational(); err != nil {
		return nil, err
	}
	if passenger.IsZero() {
		return nil, fmt.Errorf("%w: empty passenger", domain.ErrUnauthorized)
	}
	flight, ok := e.flights[key]
	if !ok {
		return nil, fmt.Errorf("%w: flight %s", domain.ErrNotFound, key)
	}
	if flight.Status != domain.StatusUnknown {
		return nil, fmt.Errorf("%w: flight %s is already %s", domain.ErrInvalidState, key, flight.Status)
	}
	if !value.IsPositive() {
		return nil, fmt.Errorf("%w: premium must be positive", domain.ErrInsufficientValue)
	}

	return e.commit(ctx, domain.Event{
		Type:      domain.EventInsurancePurchased,
		Actor:     passenger,
		FlightKey: key,
		Amount:    decimal.Min(value, e.params.PremiumCap),
		Value:     value,
	})
}

func (e *Engine) IsFlightRegistered(key domain.FlightKey) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.flights[key]
	return ok
}

func (e *Engine) Flight(key domain.FlightKey) (domain.Flight, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, ok := e.flights[key]
	if !ok {
		return domain.Flight{}, fmt.Errorf("%w: flight %s", domain.ErrNotFound, key)
	}
	return *f, nil
}

func (e *Engine) RegisteredFlightCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.flightKeys)
}

// Flights lists flights in registration order. With insurableOnly set, finalized flights
// are skipped.
func (e *Engine) Flights(insurableOnly bool) []domain.Flight {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.Flight, 0, len(e.flightKeys))
	for _, key := range e.flightKeys {
		f := e.flights[key]
		if insurableOnly && f.Status != domain.StatusUnknown {
			continue
		}
		out = append(out, *f)
	}
	return out
}

// PassengerPaidAmount returns the insured premium, zero when the passenger holds no policy.
func (e *Engine) PassengerPaidAmount(key domain.FlightKey, passenger domain.Address) decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.premiums[key][passenger]
}

func (e *Engine) Policies(key domain.FlightKey) []domain.Policy {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.Policy, 0, len(e.passengers[key]))
	for _, p := range e.passengers[key] {
		out = append(out, domain.Policy{FlightKey: key, Passenger: p, Premium: e.premiums[key][p]})
	}
	return out
}

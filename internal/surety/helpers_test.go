package surety

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	owner       domain.Address = "0xowner"
	firstIssuer domain.Address = "0xairline1"
	passenger   domain.Address = "0xpassenger"

	flightCode  = "AA123"
	departure   = "ABC"
	destination = "DEF"
	timestamp   = int64(1700000000)
)

// sequenceSource replays a fixed list of indexes, cycling when exhausted.
type sequenceSource struct {
	vals []uint8
	i    int
}

func (s *sequenceSource) Index(_ []byte, max uint8) uint8 {
	v := s.vals[s.i%len(s.vals)] % max
	s.i++
	return v
}

type recorder struct {
	events []domain.Event
}

func (r *recorder) Notify(events []domain.Event) {
	r.events = append(r.events, events...)
}

func (r *recorder) ofType(t domain.EventType) []domain.Event {
	var out []domain.Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

// memJournal keeps appended events in memory. fail rejects that many upcoming appends.
type memJournal struct {
	events []domain.Event
	fail   int
}

func (j *memJournal) Append(_ context.Context, events []domain.Event) error {
	if j.fail > 0 {
		j.fail--
		return errors.New("journal unavailable")
	}
	j.events = append(j.events, events...)
	return nil
}

// ledgerPayer transfers at most once per payout ID and journals the Paid event with the
// transfer. lostReplies transfers commit but still report an error to the caller.
type ledgerPayer struct {
	journal     *memJournal
	payouts     map[uuid.UUID]decimal.Decimal
	lostReplies int
}

func newLedgerPayer(journal *memJournal) *ledgerPayer {
	return &ledgerPayer{journal: journal, payouts: make(map[uuid.UUID]decimal.Decimal)}
}

func (p *ledgerPayer) Pay(ctx context.Context, paid domain.Event) error {
	if _, done := p.payouts[paid.ID]; !done {
		if err := p.journal.Append(ctx, []domain.Event{paid}); err != nil {
			return err
		}
		p.payouts[paid.ID] = paid.Amount
	}
	if p.lostReplies > 0 {
		p.lostReplies--
		return context.DeadlineExceeded
	}
	return nil
}

func fixedClock() func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithClock(fixedClock()),
		WithIndexSource(&sequenceSource{vals: []uint8{0, 1, 2}}),
	}
	e, err := New(DefaultParams(owner, firstIssuer), append(base, opts...)...)
	require.NoError(t, err)
	return e
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, amount(want).Equal(got), "want %s, got %s", want, got)
}

func fund(t *testing.T, e *Engine, issuer domain.Address) {
	t.Helper()
	ctx := context.Background()
	_, err := e.Fund(ctx, issuer, amount("10"))
	require.NoError(t, err)
}

// registerIssuers funds the first issuer and admits and funds the given issuers while the
// registry is below the voting threshold.
func registerIssuers(t *testing.T, e *Engine, issuers ...domain.Address) {
	t.Helper()
	ctx := context.Background()
	if !e.IsIssuerFunded(firstIssuer) {
		fund(t, e, firstIssuer)
	}
	for _, iss := range issuers {
		_, err := e.RegisterIssuer(ctx, firstIssuer, iss)
		require.NoError(t, err)
		fund(t, e, iss)
	}
}

func registerFlight(t *testing.T, e *Engine) domain.FlightKey {
	t.Helper()
	ctx := context.Background()
	key, _, err := e.RegisterFlight(ctx, firstIssuer, RegisterFlightInput{
		Code:        flightCode,
		Timestamp:   timestamp,
		Price:       amount("0.3"),
		Departure:   departure,
		Destination: destination,
	})
	require.NoError(t, err)
	return key
}

func oracleAddr(i int) domain.Address {
	return domain.Address("0xoracle" + string(rune('a'+i)))
}

func registerOracles(t *testing.T, e *Engine, n int) []domain.Address {
	t.Helper()
	ctx := context.Background()
	agents := make([]domain.Address, 0, n)
	for i := 0; i < n; i++ {
		agent := oracleAddr(i)
		_, _, err := e.RegisterOracle(ctx, agent, amount("1"))
		require.NoError(t, err)
		agents = append(agents, agent)
	}
	return agents
}

func response(index uint8, status domain.FlightStatus) OracleResponse {
	return OracleResponse{
		Index:       index,
		Code:        flightCode,
		Destination: destination,
		Timestamp:   timestamp,
		Status:      status,
	}
}

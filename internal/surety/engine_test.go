package surety

import (
	"context"
	"testing"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidParams(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(p *Params)
	}{
		{name: "missing owner", mutate: func(p *Params) { p.Owner = "" }},
		{name: "missing first issuer", mutate: func(p *Params) { p.FirstIssuer = " " }},
		{name: "zero funding", mutate: func(p *Params) { p.MinFunding = decimal.Zero }},
		{name: "negative fee", mutate: func(p *Params) { p.OracleFee = amount("-1") }},
		{name: "quorum below minimum", mutate: func(p *Params) { p.OracleQuorum = 2 }},
		{name: "index range too small", mutate: func(p *Params) { p.IndexRange = 2 }},
		{name: "no admission threshold", mutate: func(p *Params) { p.AdmissionThreshold = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams(owner, firstIssuer)
			tc.mutate(&p)
			_, err := New(p)
			assert.Error(t, err)
		})
	}
}

func TestNew_FirstIssuerRegisteredNotFunded(t *testing.T) {
	e := newTestEngine(t)

	assert.True(t, e.IsOperational())
	assert.True(t, e.IsIssuerRegistered(firstIssuer))
	assert.False(t, e.IsIssuerFunded(firstIssuer))
	assert.Equal(t, 1, e.RegisteredIssuerCount())
	assert.Equal(t, uint64(0), e.Seq())
}

func TestSetOperationalStatus_OwnerOnly(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.SetOperationalStatus(ctx, firstIssuer, false)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.True(t, e.IsOperational())

	events, err := e.SetOperationalStatus(ctx, owner, false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventOperationalStatusChanged, events[0].Type)
	assert.False(t, e.IsOperational())

	// setting the same value commits nothing
	events, err = e.SetOperationalStatus(ctx, owner, false)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestNotOperational_BlocksMutations(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	fund(t, e, firstIssuer)
	key := registerFlight(t, e)

	_, err := e.SetOperationalStatus(ctx, owner, false)
	require.NoError(t, err)
	seq := e.Seq()

	_, err = e.Fund(ctx, "0xother", amount("10"))
	assert.ErrorIs(t, err, domain.ErrNotOperational)
	_, err = e.RegisterIssuer(ctx, firstIssuer, "0xairline2")
	assert.ErrorIs(t, err, domain.ErrNotOperational)
	_, _, err = e.RegisterFlight(ctx, firstIssuer, RegisterFlightInput{Code: "BB1", Destination: "X", Timestamp: 1})
	assert.ErrorIs(t, err, domain.ErrNotOperational)
	_, err = e.BuyInsurance(ctx, passenger, key, amount("1"))
	assert.ErrorIs(t, err, domain.ErrNotOperational)
	_, _, err = e.RegisterOracle(ctx, "0xoracle", amount("1"))
	assert.ErrorIs(t, err, domain.ErrNotOperational)
	_, _, err = e.FetchFlightStatus(ctx, passenger, flightCode, destination, timestamp)
	assert.ErrorIs(t, err, domain.ErrNotOperational)
	_, _, err = e.SubmitOracleResponse(ctx, "0xoracle", response(0, domain.StatusOnTime))
	assert.ErrorIs(t, err, domain.ErrNotOperational)
	_, err = e.Withdraw(ctx, passenger)
	assert.ErrorIs(t, err, domain.ErrNotOperational)

	assert.Equal(t, seq, e.Seq(), "rejected calls must not commit")
	assert.False(t, e.IsIssuerFunded("0xother"))

	_, err = e.SetOperationalStatus(ctx, owner, true)
	require.NoError(t, err)
	_, err = e.Fund(ctx, "0xother", amount("10"))
	assert.NoError(t, err)
}

func TestNotifier_ReceivesEventsInSequence(t *testing.T) {
	rec := &recorder{}
	e := newTestEngine(t, WithNotifier(rec))

	fund(t, e, firstIssuer)
	registerFlight(t, e)

	require.Len(t, rec.events, 2)
	assert.Equal(t, domain.EventFunded, rec.events[0].Type)
	assert.Equal(t, domain.EventFlightRegistered, rec.events[1].Type)
	for i, ev := range rec.events {
		assert.Equal(t, uint64(i+1), ev.Seq)
		assert.NotEqual(t, ev.ID.String(), "00000000-0000-0000-0000-000000000000")
	}
	assert.True(t, rec.events[1].OccurredAt.After(rec.events[0].OccurredAt))
}

func TestCommit_JournalFailureLeavesNoGap(t *testing.T) {
	ctx := context.Background()
	journal := &memJournal{}
	rec := &recorder{}
	e := newTestEngine(t, WithJournal(journal), WithNotifier(rec))

	journal.fail = 1
	_, err := e.SetOperationalStatus(ctx, owner, false)
	require.Error(t, err)
	assert.True(t, e.IsOperational())
	assert.Equal(t, uint64(0), e.Seq())
	assert.Empty(t, rec.events)

	fund(t, e, firstIssuer)
	registerFlight(t, e)

	require.Len(t, journal.events, 2)
	for i, ev := range journal.events {
		assert.Equal(t, uint64(i+1), ev.Seq)
	}
	assert.Equal(t, journal.events, rec.events)

	restored := newTestEngine(t)
	require.NoError(t, restored.Restore(journal.events))
	assert.Equal(t, e.Seq(), restored.Seq())
	assert.True(t, restored.IsIssuerFunded(firstIssuer))
	assert.True(t, restored.IsOperational())
}

func TestCommit_JournalFailureDropsWholeBatch(t *testing.T) {
	ctx := context.Background()
	journal := &memJournal{}
	e := newTestEngine(t, WithJournal(journal))
	fund(t, e, firstIssuer)
	key := registerFlight(t, e)
	_, err := e.BuyInsurance(ctx, passenger, key, amount("1"))
	require.NoError(t, err)
	agents := registerOracles(t, e, 3)
	index, _, err := e.FetchFlightStatus(ctx, passenger, flightCode, destination, timestamp)
	require.NoError(t, err)
	for _, a := range agents[:2] {
		_, _, err = e.SubmitOracleResponse(ctx, a, response(index, domain.StatusLateAirline))
		require.NoError(t, err)
	}
	seq := e.Seq()

	// the quorum response carries the report, the status update and the credit
	journal.fail = 1
	_, _, err = e.SubmitOracleResponse(ctx, agents[2], response(index, domain.StatusLateAirline))
	require.Error(t, err)

	assert.Equal(t, seq, e.Seq())
	assert.True(t, e.CreditBalance(passenger).IsZero())
	flight, err := e.Flight(key)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnknown, flight.Status)
	req, err := e.Request(key, timestamp)
	require.NoError(t, err)
	assert.True(t, req.Open)
	assert.Len(t, req.Responses[domain.StatusLateAirline], 2)

	res, events, err := e.SubmitOracleResponse(ctx, agents[2], response(index, domain.StatusLateAirline))
	require.NoError(t, err)
	assert.True(t, res.Finalized)
	require.Len(t, events, 3)
	assert.Equal(t, seq+1, events[0].Seq)
	assertAmount(t, "1.5", e.CreditBalance(passenger))
}

func TestRestore_RebuildsState(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	e := newTestEngine(t, WithNotifier(rec))
	registerIssuers(t, e, "0xairline2", "0xairline3", "0xairline4")
	_, err := e.RegisterIssuer(ctx, firstIssuer, "0xairline5")
	require.NoError(t, err)

	key := registerFlight(t, e)
	_, err = e.BuyInsurance(ctx, passenger, key, amount("1"))
	require.NoError(t, err)
	agents := registerOracles(t, e, 3)
	_, _, err = e.FetchFlightStatus(ctx, passenger, flightCode, destination, timestamp)
	require.NoError(t, err)
	for _, a := range agents {
		_, _, err = e.SubmitOracleResponse(ctx, a, response(0, domain.StatusLateAirline))
		require.NoError(t, err)
	}

	restored := newTestEngine(t)
	require.NoError(t, restored.Restore(rec.events))

	assert.Equal(t, e.Seq(), restored.Seq())
	assert.Equal(t, e.RegisteredIssuerCount(), restored.RegisteredIssuerCount())
	assert.Equal(t, 1, restored.Issuer("0xairline5").Votes)
	assert.True(t, restored.IsIssuerFunded("0xairline3"))

	flight, err := restored.Flight(key)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLateAirline, flight.Status)
	assertAmount(t, "1", restored.PassengerPaidAmount(key, passenger))
	assertAmount(t, "1.5", restored.CreditBalance(passenger))
	assert.True(t, e.Escrow().Equal(restored.Escrow()))

	indexes, err := restored.OracleIndexes(agents[0])
	require.NoError(t, err)
	assert.Equal(t, [3]uint8{0, 1, 2}, indexes)

	req, err := restored.Request(key, timestamp)
	require.NoError(t, err)
	assert.False(t, req.Open)
}

func TestRestore_Errors(t *testing.T) {
	e := newTestEngine(t)
	err := e.Restore([]domain.Event{{Seq: 2, Type: domain.EventFunded, Actor: firstIssuer}})
	assert.Error(t, err)

	used := newTestEngine(t)
	fund(t, used, firstIssuer)
	assert.Error(t, used.Restore(nil))
}

package surety

import (
	"context"
	"testing"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFund(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.Fund(ctx, firstIssuer, amount("9.99"))
	assert.ErrorIs(t, err, domain.ErrInsufficientValue)
	assert.False(t, e.IsIssuerFunded(firstIssuer))

	events, err := e.Fund(ctx, firstIssuer, amount("10"))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventFunded, events[0].Type)
	assert.True(t, e.IsIssuerFunded(firstIssuer))
	assertAmount(t, "10", e.Escrow())

	_, err = e.Fund(ctx, firstIssuer, amount("10"))
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assertAmount(t, "10", e.Escrow())
}

func TestFund_CreatesUnregisteredIssuer(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	fund(t, e, "0xnewcomer")
	assert.True(t, e.IsIssuerFunded("0xnewcomer"))
	assert.False(t, e.IsIssuerRegistered("0xnewcomer"))

	// funded but not registered cannot admit others
	_, err := e.RegisterIssuer(ctx, "0xnewcomer", "0xairline2")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegisterIssuer_RequiresFundedRequester(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	_, err := e.RegisterIssuer(ctx, firstIssuer, "0xairline2")
	assert.ErrorIs(t, err, domain.ErrNotFunded)
	assert.False(t, e.IsIssuerRegistered("0xairline2"))
}

func TestRegisterIssuer_BelowThresholdAdmitsImmediately(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	fund(t, e, firstIssuer)

	for i, iss := range []domain.Address{"0xairline2", "0xairline3", "0xairline4"} {
		events, err := e.RegisterIssuer(ctx, firstIssuer, iss)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, domain.EventIssuerRegistered, events[0].Type)
		assert.Equal(t, iss, events[0].Target)
		assert.True(t, e.IsIssuerRegistered(iss))
		assert.Equal(t, i+2, e.RegisteredIssuerCount())
	}

	_, err := e.RegisterIssuer(ctx, firstIssuer, "0xairline2")
	assert.ErrorIs(t, err, domain.ErrDuplicateRegistration)
}

func TestRegisterIssuer_MultipartyConsensus(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	registerIssuers(t, e, "0xairline2", "0xairline3", "0xairline4")
	require.Equal(t, 4, e.RegisteredIssuerCount())

	events, err := e.RegisterIssuer(ctx, firstIssuer, "0xairline5")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventIssuerVoted, events[0].Type)
	assert.False(t, e.IsIssuerRegistered("0xairline5"))
	assert.Equal(t, 1, e.Issuer("0xairline5").Votes)

	// re-vote is neither counted nor an error
	events, err = e.RegisterIssuer(ctx, firstIssuer, "0xairline5")
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.False(t, e.IsIssuerRegistered("0xairline5"))
	assert.Equal(t, 1, e.Issuer("0xairline5").Votes)

	events, err = e.RegisterIssuer(ctx, "0xairline2", "0xairline5")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventIssuerVoted, events[0].Type)
	assert.Equal(t, domain.EventIssuerRegistered, events[1].Type)
	assert.True(t, e.IsIssuerRegistered("0xairline5"))
	assert.Equal(t, 5, e.RegisteredIssuerCount())
	assert.Equal(t, 0, e.Issuer("0xairline5").Votes, "votes are cleared on admission")

	_, err = e.RegisterIssuer(ctx, "0xairline3", "0xairline5")
	assert.ErrorIs(t, err, domain.ErrDuplicateRegistration)
}

func TestRegisterIssuer_UnfundedVoterRejected(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	fund(t, e, firstIssuer)
	for _, iss := range []domain.Address{"0xairline2", "0xairline3", "0xairline4"} {
		_, err := e.RegisterIssuer(ctx, firstIssuer, iss)
		require.NoError(t, err)
	}

	_, err := e.RegisterIssuer(ctx, "0xairline2", "0xairline5")
	assert.ErrorIs(t, err, domain.ErrNotFunded)
	assert.Equal(t, 0, e.Issuer("0xairline5").Votes)
}

func TestAdmissionQuorum(t *testing.T) {
	testCases := []struct {
		count int
		want  int
	}{
		{count: 4, want: 2},
		{count: 5, want: 3},
		{count: 6, want: 3},
		{count: 7, want: 4},
		{count: 10, want: 5},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, admissionQuorum(tc.count), "count %d", tc.count)
	}
}

func TestRegisterIssuer_LargerRegistryNeedsMoreVotes(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)
	registerIssuers(t, e, "0xairline2", "0xairline3", "0xairline4")

	// admit a fifth issuer with two votes, then fund it
	_, err := e.RegisterIssuer(ctx, firstIssuer, "0xairline5")
	require.NoError(t, err)
	_, err = e.RegisterIssuer(ctx, "0xairline2", "0xairline5")
	require.NoError(t, err)
	fund(t, e, "0xairline5")
	require.Equal(t, 5, e.RegisteredIssuerCount())

	// five registered issuers need three votes
	for i, voter := range []domain.Address{firstIssuer, "0xairline2"} {
		_, err = e.RegisterIssuer(ctx, voter, "0xairline6")
		require.NoError(t, err)
		assert.False(t, e.IsIssuerRegistered("0xairline6"), "after vote %d", i+1)
	}
	_, err = e.RegisterIssuer(ctx, "0xairline5", "0xairline6")
	require.NoError(t, err)
	assert.True(t, e.IsIssuerRegistered("0xairline6"))
}

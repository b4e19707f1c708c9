package surety

import (
	"errors"
	"fmt"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/shopspring/decimal"
)

// MinOracleQuorum is the lowest number of agreeing reports that may finalize a flight.
const MinOracleQuorum = 3

// Params are the protocol constants of an engine. They are fixed for the engine's lifetime.
type Params struct {
	Owner       domain.Address
	FirstIssuer domain.Address

	MinFunding       decimal.Decimal
	OracleFee        decimal.Decimal
	PremiumCap       decimal.Decimal
	PayoutMultiplier decimal.Decimal

	// AdmissionThreshold is the registered issuer count from which admission needs votes.
	AdmissionThreshold int
	OracleQuorum       int
	// IndexRange bounds oracle indexes to [0, IndexRange).
	IndexRange uint8
}

func DefaultParams(owner, firstIssuer domain.Address) Params {
	return Params{
		Owner:              owner,
		FirstIssuer:        firstIssuer,
		MinFunding:         decimal.NewFromInt(10),
		OracleFee:          decimal.NewFromInt(1),
		PremiumCap:         decimal.NewFromInt(1),
		PayoutMultiplier:   decimal.RequireFromString("1.5"),
		AdmissionThreshold: 4,
		OracleQuorum:       MinOracleQuorum,
		IndexRange:         10,
	}
}

func (p Params) Validate() error {
	if p.Owner.IsZero() {
		return errors.New("owner is required")
	}
	if p.FirstIssuer.IsZero() {
		return errors.New("first issuer is required")
	}
	for name, v := range map[string]decimal.Decimal{
		"min funding":       p.MinFunding,
		"oracle fee":        p.OracleFee,
		"premium cap":       p.PremiumCap,
		"payout multiplier": p.PayoutMultiplier,
	} {
		if !v.IsPositive() {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if p.AdmissionThreshold < 1 {
		return errors.New("admission threshold must be at least 1")
	}
	if p.OracleQuorum < MinOracleQuorum {
		return fmt.Errorf("oracle quorum must be at least %d", MinOracleQuorum)
	}
	if int(p.IndexRange) < domain.IndexesPerOracle {
		return fmt.Errorf("index range must be at least %d", domain.IndexesPerOracle)
	}
	return nil
}

// admissionQuorum is the number of distinct votes needed when count issuers are registered:
// half of count, rounded up.
func admissionQuorum(count int) int {
	return (count + 1) / 2
}

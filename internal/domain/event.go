package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventOperationalStatusChanged EventType = "OPERATIONAL_STATUS_CHANGED"
	EventFunded                   EventType = "FUNDED"
	EventIssuerVoted              EventType = "ISSUER_VOTED"
	EventIssuerRegistered         EventType = "ISSUER_REGISTERED"
	EventFlightRegistered         EventType = "FLIGHT_REGISTERED"
	EventInsurancePurchased       EventType = "INSURANCE_PURCHASED"
	EventOracleRegistered         EventType = "ORACLE_REGISTERED"
	EventOracleRequest            EventType = "ORACLE_REQUEST"
	EventOracleReport             EventType = "ORACLE_REPORT"
	EventFlightStatusUpdated      EventType = "FLIGHT_STATUS_UPDATED"
	EventCredited                 EventType = "CREDITED"
	EventPaid                     EventType = "PAID"
)

// Event is a committed state transition. Seq is gapless and starts at 1; only the fields
// relevant to Type are set.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Seq        uint64    `json:"seq"`
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`

	// Actor is the caller that triggered the transition, or the subject for Credited/Paid.
	Actor  Address `json:"actor,omitempty"`
	Target Address `json:"target,omitempty"`

	Operational bool `json:"operational,omitempty"`
	Votes       int  `json:"votes,omitempty"`

	FlightKey   FlightKey    `json:"flight_key"`
	FlightCode  string       `json:"flight_code,omitempty"`
	Departure   string       `json:"departure,omitempty"`
	Destination string       `json:"destination,omitempty"`
	Timestamp   int64        `json:"timestamp,omitempty"`
	Status      FlightStatus `json:"status,omitempty"`

	Index   uint8                   `json:"index,omitempty"`
	Indexes [IndexesPerOracle]uint8 `json:"indexes"`

	// Amount is the value credited, paid, deposited or insured; Value is the value sent along
	// with a purchase when it differs from the insured premium.
	Amount decimal.Decimal `json:"amount"`
	Value  decimal.Decimal `json:"value"`
	Price  decimal.Decimal `json:"price"`
}

// PartitionKey groups events of one flight (or one account) on the same stream partition.
func (e Event) PartitionKey() string {
	if !e.FlightKey.IsZero() {
		return e.FlightKey.String()
	}
	if !e.Actor.IsZero() {
		return e.Actor.String()
	}
	return e.ID.String()
}

// Notifies reports whether the event concerns a holder's balance.
func (e Event) Notifies() bool {
	return e.Type == EventCredited || e.Type == EventPaid
}

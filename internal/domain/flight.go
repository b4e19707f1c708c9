package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FlightStatus is the status code reported by oracles. The numeric values are part of the
// oracle protocol and must not change.
type FlightStatus uint8

const (
	StatusUnknown       FlightStatus = 0
	StatusOnTime        FlightStatus = 10
	StatusLateAirline   FlightStatus = 20
	StatusLateWeather   FlightStatus = 30
	StatusLateTechnical FlightStatus = 40
	StatusLateOther     FlightStatus = 50
)

func (s FlightStatus) Valid() bool {
	switch s {
	case StatusUnknown, StatusOnTime, StatusLateAirline, StatusLateWeather, StatusLateTechnical, StatusLateOther:
		return true
	}
	return false
}

// Terminal reports whether s may finalize a flight.
func (s FlightStatus) Terminal() bool {
	return s != StatusUnknown && s.Valid()
}

// Compensable reports whether passengers are paid out for s. Only delays caused by the
// airline are covered.
func (s FlightStatus) Compensable() bool {
	return s == StatusLateAirline
}

func (s FlightStatus) String() string {
	switch s {
	case StatusUnknown:
		return "UNKNOWN"
	case StatusOnTime:
		return "ON_TIME"
	case StatusLateAirline:
		return "LATE_AIRLINE"
	case StatusLateWeather:
		return "LATE_WEATHER"
	case StatusLateTechnical:
		return "LATE_TECHNICAL"
	case StatusLateOther:
		return "LATE_OTHER"
	default:
		return "INVALID"
	}
}

type Flight struct {
	Key         FlightKey
	Code        string
	Departure   string
	Destination string
	Timestamp   int64
	Price       decimal.Decimal
	Issuer      Address
	Status      FlightStatus
	UpdatedAt   time.Time
}

// Policy is a passenger's insurance on one flight.
type Policy struct {
	FlightKey FlightKey
	Passenger Address
	Premium   decimal.Decimal
}

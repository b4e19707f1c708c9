package domain

// IndexesPerOracle is the number of indexes assigned to every oracle agent.
const IndexesPerOracle = 3

type Oracle struct {
	Address Address
	Indexes [IndexesPerOracle]uint8
}

// Has reports whether index is one of the oracle's assigned indexes.
func (o Oracle) Has(index uint8) bool {
	for _, i := range o.Indexes {
		if i == index {
			return true
		}
	}
	return false
}

// OracleRequest is a status request for one flight. Responses holds the reporters per status code.
type OracleRequest struct {
	FlightKey FlightKey
	Timestamp int64
	Index     uint8
	Requester Address
	Open      bool
	Responses map[FlightStatus][]Address
}

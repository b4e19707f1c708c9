package surety

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/shopspring/decimal"
)

// RegisterOracle assigns three distinct indexes to agent in exchange for the registration fee.
func (e *Engine) RegisterOracle(ctx context.Context, agent domain.Address, fee decimal.Decimal) ([domain.IndexesPerOracle]uint8, []domain.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var indexes [domain.IndexesPerOracle]uint8
	if err := e.requireOperational(); err != nil {
		return indexes, nil, err
	}
	if agent.IsZero() {
		return indexes, nil, fmt.Errorf("%w: empty oracle", domain.ErrUnauthorized)
	}
	if fee.LessThan(e.params.OracleFee) {
		return indexes, nil, fmt.Errorf("%w: fee %s is below %s", domain.ErrInsufficientValue, fee, e.params.OracleFee)
	}
	if _, ok := e.oracles[agent]; ok {
		return indexes, nil, fmt.Errorf("%w: oracle %s", domain.ErrDuplicateRegistration, agent)
	}

	indexes = e.drawIndexes(agent)
	events, err := e.commit(ctx, domain.Event{
		Type:    domain.EventOracleRegistered,
		Actor:   agent,
		Indexes: indexes,
		Amount:  fee,
	})
	if err != nil {
		return [domain.IndexesPerOracle]uint8{}, nil, err
	}
	return indexes, events, nil
}

func (e *Engine) drawIndexes(agent domain.Address) [domain.IndexesPerOracle]uint8 {
	var out [domain.IndexesPerOracle]uint8
	seed := []byte(agent)
	for i := range out {
	draw:
		for {
			idx := e.indexes.Index(seed, e.params.IndexRange)
			for _, prev := range out[:i] {
				if prev == idx {
					continue draw
				}
			}
			out[i] = idx
			break
		}
	}
	return out
}

func (e *Engine) OracleIndexes(agent domain.Address) ([domain.IndexesPerOracle]uint8, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	indexes, ok := e.oracles[agent]
	if !ok {
		return indexes, fmt.Errorf("%w: oracle %s", domain.ErrNotFound, agent)
	}
	return indexes, nil
}

func (e *Engine) IsOracleRegistered(agent domain.Address) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.oracles[agent]
	return ok
}

// FetchFlightStatus opens a status request for the flight and announces the index whose
// oracles may answer. Fetching an open request again re-announces its index.
func (e *Engine) FetchFlightStatus(ctx context.Context, requester domain.Address, code, destination string, timestamp int64) (uint8, []domain.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.requireOperational(); err != nil {
		return 0, nil, err
	}
	key := domain.NewFlightKey(code, destination, timestamp)
	flight, ok := e.flights[key]
	if !ok {
		return 0, nil, fmt.Errorf("%w: flight %s", domain.ErrNotFound, key)
	}
	if flight.Status != domain.StatusUnknown {
		return 0, nil, fmt.Errorf("%w: flight %s is already %s", domain.ErrInvalidState, key, flight.Status)
	}

	ev := domain.Event{
		Type:        domain.EventOracleRequest,
		Actor:       requester,
		FlightKey:   key,
		FlightCode:  code,
		Destination: destination,
		Timestamp:   timestamp,
	}
	if req, ok := e.requests[requestKey{key, timestamp}]; ok {
		ev.Index = req.index
	} else {
		var seed []byte
		seed = append(seed, code...)
		seed = binary.BigEndian.AppendUint64(seed, uint64(timestamp))
		ev.Index = e.indexes.Index(seed, e.params.IndexRange)
	}
	events, err := e.commit(ctx, ev)
	if err != nil {
		return 0, nil, err
	}
	return ev.Index, events, nil
}

// SubmitResult tells an agent what became of its response.
type SubmitResult struct {
	// Accepted is false when the request had already closed; the response was ignored.
	Accepted  bool
	Finalized bool
	Status    domain.FlightStatus
}

type OracleResponse struct {
	Index       uint8
	Code        string
	Destination string
	Timestamp   int64
	Status      domain.FlightStatus
}

// SubmitOracleResponse records agent's report. When the reporters of one status reach the
// quorum the request closes, the flight is finalized and, for airline delays, every insured
// passenger is credited in the same commit. Responses to a closed request are no-ops.
func (e *Engine) SubmitOracleResponse(ctx context.Context, agent domain.Address, resp OracleResponse) (SubmitResult, []domain.Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var res SubmitResult
	if err := e.requireOperational(); err != nil {
		return res, nil, err
	}
	oracle, ok := e.oracles[agent]
	if !ok {
		return res, nil, fmt.Errorf("%w: %s is not a registered oracle", domain.ErrUnauthorized, agent)
	}
	if !(domain.Oracle{Address: agent, Indexes: oracle}).Has(resp.Index) {
		return res, nil, fmt.Errorf("%w: index %d is not assigned to %s", domain.ErrQuorumMismatch, resp.Index, agent)
	}
	if !resp.Status.Terminal() {
		return res, nil, fmt.Errorf("%w: status code %d cannot finalize a flight", domain.ErrInvalidState, resp.Status)
	}

	key := domain.NewFlightKey(resp.Code, resp.Destination, resp.Timestamp)
	req, ok := e.requests[requestKey{key, resp.Timestamp}]
	if !ok {
		return res, nil, fmt.Errorf("%w: no status request for flight %s", domain.ErrInvalidState, key)
	}
	if !req.open {
		return res, nil, nil
	}
	if req.index != resp.Index {
		return res, nil, fmt.Errorf("%w: request expects index %d, got %d", domain.ErrQuorumMismatch, req.index, resp.Index)
	}
	if _, dup := req.responded[agent]; dup {
		return res, nil, fmt.Errorf("%w: %s already responded for flight %s", domain.ErrInvalidState, agent, key)
	}

	events := []domain.Event{{
		Type:        domain.EventOracleReport,
		Actor:       agent,
		FlightKey:   key,
		FlightCode:  resp.Code,
		Destination: resp.Destination,
		Timestamp:   resp.Timestamp,
		Index:       resp.Index,
		Status:      resp.Status,
	}}
	res.Accepted = true

	if len(req.byStatus[resp.Status])+1 >= e.params.OracleQuorum {
		events = append(events, domain.Event{
			Type:        domain.EventFlightStatusUpdated,
			Actor:       agent,
			FlightKey:   key,
			FlightCode:  resp.Code,
			Destination: resp.Destination,
			Timestamp:   resp.Timestamp,
			Status:      resp.Status,
		})
		if resp.Status.Compensable() {
			events = append(events, e.settlement(key)...)
		}
		res.Finalized = true
		res.Status = resp.Status
	}
	committed, err := e.commit(ctx, events...)
	if err != nil {
		return SubmitResult{}, nil, err
	}
	return res, committed, nil
}

// Request returns a copy of the status request for a flight.
func (e *Engine) Request(key domain.FlightKey, timestamp int64) (domain.OracleRequest, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	req, ok := e.requests[requestKey{key, timestamp}]
	if !ok {
		return domain.OracleRequest{}, fmt.Errorf("%w: request for flight %s", domain.ErrNotFound, key)
	}
	out := domain.OracleRequest{
		FlightKey: key,
		Timestamp: timestamp,
		Index:     req.index,
		Requester: req.requester,
		Open:      req.open,
		Responses: make(map[domain.FlightStatus][]domain.Address, len(req.byStatus)),
	}
	for status, reporters := range req.byStatus {
		out.Responses[status] = append([]domain.Address(nil), reporters...)
	}
	return out, nil
}

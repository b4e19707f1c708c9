package insurance

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/surety"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SuretyUseCase interface {
	IsOperational(ctx context.Context) bool
	SetOperationalStatus(ctx context.Context, caller domain.Address, operational bool) error
	Escrow(ctx context.Context) decimal.Decimal

	Fund(ctx context.Context, input FundInput) error
	RegisterIssuer(ctx context.Context, requester, newIssuer domain.Address) (domain.Issuer, error)
	Issuer(ctx context.Context, addr domain.Address) domain.Issuer
	RegisteredIssuerCount(ctx context.Context) int

	RegisterFlight(ctx context.Context, issuer domain.Address, input surety.RegisterFlightInput) (domain.FlightKey, error)
	IsFlightRegistered(ctx context.Context, key domain.FlightKey) bool
	RegisteredFlightCount(ctx context.Context) int
	BuyInsurance(ctx context.Context, input BuyInsuranceInput) (domain.Policy, error)
	PassengerPaidAmount(ctx context.Context, key domain.FlightKey, passenger domain.Address) decimal.Decimal

	RegistrationFee(ctx context.Context) decimal.Decimal
	RegisterOracle(ctx context.Context, input RegisterOracleInput) ([domain.IndexesPerOracle]uint8, error)
	OracleIndexes(ctx context.Context, agent domain.Address) ([domain.IndexesPerOracle]uint8, error)
	FetchFlightStatus(ctx context.Context, requester domain.Address, code, destination string, timestamp int64) (uint8, error)
	SubmitOracleResponse(ctx context.Context, agent domain.Address, resp surety.OracleResponse) (surety.SubmitResult, error)
	Request(ctx context.Context, key domain.FlightKey, timestamp int64) (domain.OracleRequest, error)

	Withdraw(ctx context.Context, holder domain.Address, requestKey string) (decimal.Decimal, error)
	CreditBalance(ctx context.Context, holder domain.Address) decimal.Decimal
}

type FlightProjection interface {
	Upsert(ctx context.Context, flight domain.Flight) error
	UpdateStatus(ctx context.Context, key domain.FlightKey, status domain.FlightStatus, at time.Time) error
}

type Cache interface {
	AcquireRequestKey(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseRequestKey(ctx context.Context, key string) error
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	PublishEvents(ctx context.Context, topic string, events []domain.Event) error
}

// FundInput and the other payable inputs carry an optional idempotency key. A key that was
// already used for a successful call rejects the repeat with ErrDuplicateSubmission.
type FundInput struct {
	Issuer     domain.Address
	Value      decimal.Decimal
	RequestKey string
}

type BuyInsuranceInput struct {
	Passenger   domain.Address
	Code        string
	Destination string
	Timestamp   int64
	Value       decimal.Decimal
	RequestKey  string
}

type RegisterOracleInput struct {
	Agent      domain.Address
	Fee        decimal.Decimal
	RequestKey string
}

type Service struct {
	engine             *surety.Engine
	flights            FlightProjection
	cache              Cache
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	idempotencyTTL     time.Duration
	logger             *zap.Logger
}

type ServiceOption func(*Service)

func WithNotificationsTopic(topic string) ServiceOption {
	return func(s *Service) {
		s.notificationsTopic = topic
	}
}

func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService wraps engine. Any of flights, cache and producer may be nil, which disables that
// side effect. Journaling belongs to the engine.
func NewService(
	engine *surety.Engine,
	flights FlightProjection,
	cache Cache,
	producer Producer,
	eventsTopic string,
	idempotencyTTL time.Duration,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		engine:         engine,
		flights:        flights,
		cache:          cache,
		producer:       producer,
		eventsTopic:    eventsTopic,
		idempotencyTTL: idempotencyTTL,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) IsOperational(ctx context.Context) bool {
	return s.engine.IsOperational()
}

func (s *Service) SetOperationalStatus(ctx context.Context, caller domain.Address, operational bool) error {
	events, err := s.engine.SetOperationalStatus(ctx, caller, operational)
	if err != nil {
		return err
	}
	s.record(ctx, events)
	return nil
}

func (s *Service) Escrow(ctx context.Context) decimal.Decimal {
	return s.engine.Escrow()
}

func (s *Service) Fund(ctx context.Context, input FundInput) error {
	release, err := s.claim(ctx, input.RequestKey)
	if err != nil {
		return err
	}
	events, err := s.engine.Fund(ctx, input.Issuer, input.Value)
	if err != nil {
		release()
		return err
	}
	s.record(ctx, events)
	return nil
}

func (s *Service) RegisterIssuer(ctx context.Context, requester, newIssuer domain.Address) (domain.Issuer, error) {
	events, err := s.engine.RegisterIssuer(ctx, requester, newIssuer)
	if err != nil {
		return domain.Issuer{}, err
	}
	s.record(ctx, events)
	return s.engine.Issuer(newIssuer), nil
}

func (s *Service) Issuer(ctx context.Context, addr domain.Address) domain.Issuer {
	return s.engine.Issuer(addr)
}

func (s *Service) RegisteredIssuerCount(ctx context.Context) int {
	return s.engine.RegisteredIssuerCount()
}

func (s *Service) RegisterFlight(ctx context.Context, issuer domain.Address, input surety.RegisterFlightInput) (domain.FlightKey, error) {
	key, events, err := s.engine.RegisterFlight(ctx, issuer, input)
	if err != nil {
		return key, err
	}
	s.record(ctx, events)
	return key, nil
}

func (s *Service) IsFlightRegistered(ctx context.Context, key domain.FlightKey) bool {
	return s.engine.IsFlightRegistered(key)
}

func (s *Service) RegisteredFlightCount(ctx context.Context) int {
	return s.engine.RegisteredFlightCount()
}

func (s *Service) BuyInsurance(ctx context.Context, input BuyInsuranceInput) (domain.Policy, error) {
	release, err := s.claim(ctx, input.RequestKey)
	if err != nil {
		return domain.Policy{}, err
	}
	key := domain.NewFlightKey(input.Code, input.Destination, input.Timestamp)
	events, err := s.engine.BuyInsurance(ctx, input.Passenger, key, input.Value)
	if err != nil {
		release()
		return domain.Policy{}, err
	}
	s.record(ctx, events)
	return domain.Policy{
		FlightKey: key,
		Passenger: input.Passenger,
		Premium:   s.engine.PassengerPaidAmount(key, input.Passenger),
	}, nil
}

func (s *Service) PassengerPaidAmount(ctx context.Context, key domain.FlightKey, passenger domain.Address) decimal.Decimal {
	return s.engine.PassengerPaidAmount(key, passenger)
}

func (s *Service) RegistrationFee(ctx context.Context) decimal.Decimal {
	return s.engine.Params().OracleFee
}

func (s *Service) RegisterOracle(ctx context.Context, input RegisterOracleInput) ([domain.IndexesPerOracle]uint8, error) {
	release, err := s.claim(ctx, input.RequestKey)
	if err != nil {
		return [domain.IndexesPerOracle]uint8{}, err
	}
	indexes, events, err := s.engine.RegisterOracle(ctx, input.Agent, input.Fee)
	if err != nil {
		release()
		return indexes, err
	}
	s.record(ctx, events)
	return indexes, nil
}

func (s *Service) OracleIndexes(ctx context.Context, agent domain.Address) ([domain.IndexesPerOracle]uint8, error) {
	return s.engine.OracleIndexes(agent)
}

func (s *Service) FetchFlightStatus(ctx context.Context, requester domain.Address, code, destination string, timestamp int64) (uint8, error) {
	index, events, err := s.engine.FetchFlightStatus(ctx, requester, code, destination, timestamp)
	if err != nil {
		return 0, err
	}
	s.record(ctx, events)
	return index, nil
}

func (s *Service) SubmitOracleResponse(ctx context.Context, agent domain.Address, resp surety.OracleResponse) (surety.SubmitResult, error) {
	res, events, err := s.engine.SubmitOracleResponse(ctx, agent, resp)
	if err != nil {
		return res, err
	}
	s.record(ctx, events)
	return res, nil
}

func (s *Service) Request(ctx context.Context, key domain.FlightKey, timestamp int64) (domain.OracleRequest, error) {
	return s.engine.Request(key, timestamp)
}

func (s *Service) Withdraw(ctx context.Context, holder domain.Address, requestKey string) (decimal.Decimal, error) {
	release, err := s.claim(ctx, requestKey)
	if err != nil {
		return decimal.Zero, err
	}
	events, err := s.engine.Withdraw(ctx, holder)
	if err != nil {
		release()
		return decimal.Zero, err
	}
	s.record(ctx, events)
	return events[0].Amount, nil
}

func (s *Service) CreditBalance(ctx context.Context, holder domain.Address) decimal.Decimal {
	return s.engine.CreditBalance(holder)
}

// claim reserves an idempotency key. The returned release frees it again so that a failed
// call can be retried with the same key.
func (s *Service) claim(ctx context.Context, key string) (func(), error) {
	if key == "" || s.cache == nil {
		return func() {}, nil
	}
	ok, err := s.cache.AcquireRequestKey(ctx, key, s.idempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("claim request key: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateSubmission, key)
	}
	return func() {
		if err := s.cache.ReleaseRequestKey(ctx, key); err != nil {
			s.logger.Warn("failed to release request key", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// record runs the derived side effects of events the engine has already journaled and
// committed. The flight projection and the event stream can be rebuilt from the journal, so
// their failures are logged, not returned.
func (s *Service) record(ctx context.Context, events []domain.Event) {
	if len(events) == 0 {
		return
	}
	if s.project(ctx, events) && s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			s.logger.Warn("failed to invalidate flights cache", zap.Error(err))
		}
	}

	s.publish(ctx, events)
}

// project applies flight changes to the read model and reports whether any flight changed.
func (s *Service) project(ctx context.Context, events []domain.Event) bool {
	changed := false
	for _, ev := range events {
		var err error
		switch ev.Type {
		case domain.EventFlightRegistered:
			changed = true
			if s.flights != nil {
				err = s.flights.Upsert(ctx, flightFromEvent(ev))
			}
		case domain.EventFlightStatusUpdated:
			changed = true
			if s.flights != nil {
				err = s.flights.UpdateStatus(ctx, ev.FlightKey, ev.Status, ev.OccurredAt)
			}
		}
		if err != nil {
			s.logger.Warn("failed to project flight",
				zap.String("flight", ev.FlightKey.String()),
				zap.String("event", string(ev.Type)),
				zap.Error(err),
			)
		}
	}
	return changed
}

func (s *Service) publish(ctx context.Context, events []domain.Event) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	if err := s.producer.PublishEvents(ctx, s.eventsTopic, events); err != nil {
		s.logger.Warn("failed to publish events", zap.String("topic", s.eventsTopic), zap.Error(err))
	}
	if s.notificationsTopic == "" {
		return
	}
	var notices []domain.Event
	for _, ev := range events {
		if ev.Notifies() {
			notices = append(notices, ev)
		}
	}
	if len(notices) == 0 {
		return
	}
	if err := s.producer.PublishEvents(ctx, s.notificationsTopic, notices); err != nil {
		s.logger.Warn("failed to publish notifications", zap.String("topic", s.notificationsTopic), zap.Error(err))
	}
}

func flightFromEvent(ev domain.Event) domain.Flight {
	return domain.Flight{
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
}

var _ SuretyUseCase = (*Service)(nil)

package api

import (
	"context"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/service/insurance"
	"github.com/Domenick1991/flightsurety/internal/surety"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockSuretyUseCase is a mock implementation of insurance.SuretyUseCase
type MockSuretyUseCase struct {
	mock.Mock
}

func (m *MockSuretyUseCase) IsOperational(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockSuretyUseCase) SetOperationalStatus(ctx context.Context, caller domain.Address, operational bool) error {
	return m.Called(ctx, caller, operational).Error(0)
}

func (m *MockSuretyUseCase) Escrow(ctx context.Context) decimal.Decimal {
	return m.Called(ctx).Get(0).(decimal.Decimal)
}

func (m *MockSuretyUseCase) RegistrationFee(ctx context.Context) decimal.Decimal {
	return m.Called(ctx).Get(0).(decimal.Decimal)
}

func (m *MockSuretyUseCase) Fund(ctx context.Context, input insurance.FundInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockSuretyUseCase) RegisterIssuer(ctx context.Context, requester, newIssuer domain.Address) (domain.Issuer, error) {
	args := m.Called(ctx, requester, newIssuer)
	return args.Get(0).(domain.Issuer), args.Error(1)
}

func (m *MockSuretyUseCase) Issuer(ctx context.Context, addr domain.Address) domain.Issuer {
	return m.Called(ctx, addr).Get(0).(domain.Issuer)
}

func (m *MockSuretyUseCase) RegisteredIssuerCount(ctx context.Context) int {
	return m.Called(ctx).Int(0)
}

func (m *MockSuretyUseCase) RegisterFlight(ctx context.Context, issuer domain.Address, input surety.RegisterFlightInput) (domain.FlightKey, error) {
	args := m.Called(ctx, issuer, input)
	return args.Get(0).(domain.FlightKey), args.Error(1)
}

func (m *MockSuretyUseCase) IsFlightRegistered(ctx context.Context, key domain.FlightKey) bool {
	return m.Called(ctx, key).Bool(0)
}

func (m *MockSuretyUseCase) RegisteredFlightCount(ctx context.Context) int {
	return m.Called(ctx).Int(0)
}

func (m *MockSuretyUseCase) BuyInsurance(ctx context.Context, input insurance.BuyInsuranceInput) (domain.Policy, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(domain.Policy), args.Error(1)
}

func (m *MockSuretyUseCase) PassengerPaidAmount(ctx context.Context, key domain.FlightKey, passenger domain.Address) decimal.Decimal {
	return m.Called(ctx, key, passenger).Get(0).(decimal.Decimal)
}

func (m *MockSuretyUseCase) RegisterOracle(ctx context.Context, input insurance.RegisterOracleInput) ([domain.IndexesPerOracle]uint8, error) {
	args := m.Called(ctx, input)
	return args.Get(0).([domain.IndexesPerOracle]uint8), args.Error(1)
}

func (m *MockSuretyUseCase) OracleIndexes(ctx context.Context, agent domain.Address) ([domain.IndexesPerOracle]uint8, error) {
	args := m.Called(ctx, agent)
	return args.Get(0).([domain.IndexesPerOracle]uint8), args.Error(1)
}

func (m *MockSuretyUseCase) FetchFlightStatus(ctx context.Context, requester domain.Address, code, destination string, timestamp int64) (uint8, error) {
	args := m.Called(ctx, requester, code, destination, timestamp)
	return args.Get(0).(uint8), args.Error(1)
}

func (m *MockSuretyUseCase) SubmitOracleResponse(ctx context.Context, agent domain.Address, resp surety.OracleResponse) (surety.SubmitResult, error) {
	args := m.Called(ctx, agent, resp)
	return args.Get(0).(surety.SubmitResult), args.Error(1)
}

func (m *MockSuretyUseCase) Request(ctx context.Context, key domain.FlightKey, timestamp int64) (domain.OracleRequest, error) {
	args := m.Called(ctx, key, timestamp)
	return args.Get(0).(domain.OracleRequest), args.Error(1)
}

func (m *MockSuretyUseCase) Withdraw(ctx context.Context, holder domain.Address, requestKey string) (decimal.Decimal, error) {
	args := m.Called(ctx, holder, requestKey)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSuretyUseCase) CreditBalance(ctx context.Context, holder domain.Address) decimal.Decimal {
	return m.Called(ctx, holder).Get(0).(decimal.Decimal)
}

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) ListInsurable(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByKey(ctx context.Context, key domain.FlightKey) (*domain.Flight, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

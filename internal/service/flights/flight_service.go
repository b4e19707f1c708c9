package flights

import (
	"context"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/Domenick1991/flightsurety/internal/repository"
)

type FlightUseCase interface {
	ListInsurable(ctx context.Context) ([]domain.Flight, error)
	GetByKey(ctx context.Context, key domain.FlightKey) (*domain.Flight, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
}

// FlightService reads the flights projection. The insurable list is cached until the next
// flight registration or status change invalidates it.
type FlightService struct {
	repo  repository.FlightRepository
	cache FlightCache
}

func NewFlightService(repo repository.FlightRepository, cache FlightCache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

func (s *FlightService) ListInsurable(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.ListInsurable(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByKey(ctx context.Context, key domain.FlightKey) (*domain.Flight, error) {
	return s.repo.GetByKey(ctx, key)
}

var _ FlightUseCase = (*FlightService)(nil)

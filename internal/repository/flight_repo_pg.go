package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// FlightRepository is the queryable projection of registered flights.
type FlightRepository interface {
	Upsert(ctx context.Context, flight domain.Flight) error
	UpdateStatus(ctx context.Context, key domain.FlightKey, status domain.FlightStatus, at time.Time) error
	ListInsurable(ctx context.Context) ([]domain.Flight, error)
	GetByKey(ctx context.Context, key domain.FlightKey) (*domain.Flight, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `flight_key, code, departure, destination, departs_at, price::text, issuer, status, updated_at`

func (r *PGFlightRepository) Upsert(ctx context.Context, f domain.Flight) error {
	_, err := r.db.Exec(ctx, `INSERT INTO flights (flight_key, code, departure, destination, departs_at, price, issuer, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9)
		ON CONFLICT (flight_key) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`,
		f.Key.String(), f.Code, f.Departure, f.Destination, f.Timestamp, f.Price.String(), string(f.Issuer), int16(f.Status), f.UpdatedAt)
	return err
}

func (r *PGFlightRepository) UpdateStatus(ctx context.Context, key domain.FlightKey, status domain.FlightStatus, at time.Time) error {
	res, err := r.db.Exec(ctx, `UPDATE flights SET status=$1, updated_at=$2 WHERE flight_key=$3`, int16(status), at, key.String())
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: flight %s", domain.ErrNotFound, key)
	}
	return nil
}

func (r *PGFlightRepository) ListInsurable(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights WHERE status=$1 ORDER BY departs_at`, int16(domain.StatusUnknown))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByKey(ctx context.Context, key domain.FlightKey) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_key=$1`, key.String())
	f, err := scanFlight(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: flight %s", domain.ErrNotFound, key)
	}
	return f, err
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var (
		f      domain.Flight
		key    string
		price  string
		issuer string
		status int16
	)
	if err := row.Scan(&key, &f.Code, &f.Departure, &f.Destination, &f.Timestamp, &price, &issuer, &status, &f.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if f.Key, err = domain.ParseFlightKey(key); err != nil {
		return nil, err
	}
	if f.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price of %s: %w", key, err)
	}
	f.Issuer = domain.Address(issuer)
	f.Status = domain.FlightStatus(status)
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)

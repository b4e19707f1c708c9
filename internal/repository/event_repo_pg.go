package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository is the append-only journal of committed engine events.
type EventRepository interface {
	Append(ctx context.Context, events []domain.Event) error
	List(ctx context.Context) ([]domain.Event, error)
}

type PGEventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) EventRepository {
	return &PGEventRepository{db: db}
}

// Append stores a batch atomically. A sequence number that is already journaled fails the
// whole batch.
func (r *PGEventRepository) Append(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, ev := range events {
		if err := insertEvent(ctx, tx, insertEventSQL, ev); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGEventRepository) List(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `SELECT payload FROM surety_events ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		ev, err := decodeEvent(payload)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

const (
	insertEventSQL = `INSERT INTO surety_events (seq, id, type, occurred_at, payload) VALUES ($1, $2, $3, $4, $5)`
	// a replayed event with the same id is already journaled; a different event at the same
	// seq still conflicts on the primary key
	insertEventOnceSQL = insertEventSQL + ` ON CONFLICT (id) DO NOTHING`
)

func insertEvent(ctx context.Context, tx pgx.Tx, query string, ev domain.Event) error {
	payload, err := encodeEvent(ev)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, int64(ev.Seq), ev.ID.String(), string(ev.Type), ev.OccurredAt, payload); err != nil {
		return fmt.Errorf("insert event %d: %w", ev.Seq, err)
	}
	return nil
}

func encodeEvent(ev domain.Event) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event %d: %w", ev.Seq, err)
	}
	return payload, nil
}

func decodeEvent(payload []byte) (domain.Event, error) {
	var ev domain.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ev, fmt.Errorf("decode journaled event: %w", err)
	}
	return ev, nil
}

var _ EventRepository = (*PGEventRepository)(nil)

package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGPayoutRepository records outgoing transfers. It is the value-transfer side of a
// withdrawal and journals the Paid event in the same transaction.
type PGPayoutRepository struct {
	db *pgxpool.Pool
}

func NewPayoutRepository(db *pgxpool.Pool) *PGPayoutRepository {
	return &PGPayoutRepository{db: db}
}

// Pay stores the payout under the Paid event's ID. Paying the same event again is a no-op, so
// a call retried after an ambiguous commit transfers once.
func (r *PGPayoutRepository) Pay(ctx context.Context, paid domain.Event) error {
	if paid.Type != domain.EventPaid {
		return fmt.Errorf("%w: cannot pay a %s event", domain.ErrInvalidState, paid.Type)
	}
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, insertPayoutSQL, paid.ID.String(), string(paid.Actor), paid.Amount.String()); err != nil {
		return fmt.Errorf("insert payout %s: %w", paid.ID, err)
	}
	if err := insertEvent(ctx, tx, insertEventOnceSQL, paid); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const insertPayoutSQL = `INSERT INTO payouts (id, holder, amount) VALUES ($1, $2, $3::numeric) ON CONFLICT (id) DO NOTHING`

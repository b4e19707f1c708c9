package notify

import (
	"context"

	"github.com/Domenick1991/flightsurety/internal/domain"
	"go.uber.org/zap"
)

// Sender tells holders about changes to their balance. Delivery is a structured log line;
// a mail or push gateway would plug in here.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	return &Sender{logger: logger}
}

// Send notifies about Credited and Paid events and ignores the rest.
func (s *Sender) Send(ctx context.Context, ev domain.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch ev.Type {
	case domain.EventCredited:
		s.logger.Info("notify holder: insurance payout credited",
			zap.String("holder", ev.Actor.String()),
			zap.String("flight", ev.FlightKey.String()),
			zap.String("amount", ev.Amount.String()),
		)
	case domain.EventPaid:
		s.logger.Info("notify holder: withdrawal paid",
			zap.String("holder", ev.Actor.String()),
			zap.String("amount", ev.Amount.String()),
		)
	}
	return nil
}

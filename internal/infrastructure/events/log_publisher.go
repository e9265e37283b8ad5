package events

import (
	"context"

	"github.com/riskibarqy/asset-draft/internal/domain/draft"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
)

// LogPublisher records draft events in the application log. It is the
// publisher used when no broker is configured.
type LogPublisher struct {
	logger *logging.Logger
}

func NewLogPublisher(logger *logging.Logger) *LogPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event draft.Event) error {
	args := []any{
		"event_type", string(event.Type),
		"league_id", event.LeagueID,
		"status", string(event.Status),
	}
	if event.PickNumber > 0 {
		args = append(args,
			"pick_number", event.PickNumber,
			"round", event.Round,
			"slot", event.Slot,
			"user_id", event.UserID,
			"asset_id", event.AssetID,
			"source", string(event.Source),
		)
	}
	if event.Notice != "" {
		args = append(args, "notice", event.Notice)
	}
	p.logger.InfoContext(ctx, "draft event", args...)
	return nil
}

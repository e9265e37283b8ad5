package events

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/nats-io/nats.go"
	"github.com/riskibarqy/asset-draft/internal/domain/draft"
	"github.com/riskibarqy/asset-draft/internal/platform/logging"
)

const (
	defaultStreamName = "DRAFT_EVENTS"
	defaultSubject    = "asset-draft.events"
	publishTimeout    = 5 * time.Second
)

type NATSConfig struct {
	URL        string
	Subject    string
	StreamName string
	// MaxAge bounds how long events stay in the stream. Zero keeps them forever.
	MaxAge time.Duration
}

// NATSPublisher writes draft events to a JetStream stream. Each league gets
// its own subject, <subject>.<leagueID>, so consumers can replay one board.
type NATSPublisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	subject string
	logger  *logging.Logger
}

func NewNATSPublisher(cfg NATSConfig, logger *logging.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	subject := strings.TrimSuffix(strings.TrimSpace(cfg.Subject), ".")
	if subject == "" {
		subject = defaultSubject
	}
	streamName := strings.TrimSpace(cfg.StreamName)
	if streamName == "" {
		streamName = defaultStreamName
	}

	nc, err := nats.Connect(cfg.URL, nats.Name("asset-draft"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	if _, err := js.StreamInfo(streamName); err != nil {
		if _, err := js.AddStream(&nats.StreamConfig{
			Name:     streamName,
			Subjects: []string{subject + ".>"},
			Storage:  nats.FileStorage,
			MaxAge:   cfg.MaxAge,
		}); err != nil {
			nc.Close()
			return nil, fmt.Errorf("create stream %s: %w", streamName, err)
		}
	}

	return &NATSPublisher{
		nc:      nc,
		js:      js,
		subject: subject,
		logger:  logger,
	}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event draft.Event) error {
	payload, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal draft event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	subject := p.subject + "." + event.LeagueID
	ack, err := p.js.Publish(subject, payload, nats.Context(ctx), nats.MsgId(eventMsgID(event)))
	if err != nil {
		return fmt.Errorf("publish draft event %s: %w", event.Type, err)
	}

	p.logger.DebugContext(ctx, "draft event published",
		"subject", subject,
		"event_type", string(event.Type),
		"stream", ack.Stream,
		"sequence", ack.Sequence,
		"duplicate", ack.Duplicate,
	)
	return nil
}

// Subscribe delivers every event of a league to handler until the returned
// subscription is drained. Used by replay tooling and tests.
func (p *NATSPublisher) Subscribe(leagueID string, handler func(draft.Event)) (*nats.Subscription, error) {
	return p.js.Subscribe(p.subject+"."+leagueID, func(msg *nats.Msg) {
		var event draft.Event
		if err := sonic.Unmarshal(msg.Data, &event); err != nil {
			p.logger.Warn("drop malformed draft event", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		handler(event)
		_ = msg.Ack()
	}, nats.DeliverAll(), nats.ManualAck())
}

func (p *NATSPublisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}

// eventMsgID lets JetStream drop a retried publish of the same transition.
func eventMsgID(event draft.Event) string {
	return event.LeagueID + ":" + string(event.Type) + ":" +
		strconv.Itoa(event.PickNumber) + ":" + strconv.FormatInt(event.OccurredAt.UnixNano(), 10)
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"forge-build-publisher/config"
)

const (
	EventBuildPublished = "forge/build.published"

	defaultExchange   = "events"
	defaultRoutingKey = "forge.build.published.v1"
)

type BuildPublishedData struct {
	ItemID    string `json:"item_id"`
	BuildFile string `json:"build_file"`
	Channel   string `json:"channel"`
	RunID     string `json:"run_id"`
}

type BuildPublishedEnvelope struct {
	EventName string             `json:"event_name"`
	EventID   string             `json:"event_id"`
	TS        time.Time          `json:"ts"`
	Data      BuildPublishedData `json:"data"`
}

type publishFunc func(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error

// Notifier announces finished publish runs on the events exchange.
type Notifier struct {
	cfg     config.RabbitMQConfig
	channel *amqp.Channel
	logger  *zap.SugaredLogger
	now     func() time.Time

	publish publishFunc
}

type NewNotifierParams struct {
	fx.In

	Cfg     *config.Config
	Channel *amqp.Channel `optional:"true"`
	Logger  *zap.SugaredLogger
}

func NewNotifier(p NewNotifierParams) *Notifier {
	n := &Notifier{
		cfg:     p.Cfg.RabbitMQ,
		channel: p.Channel,
		logger:  p.Logger,
		now:     time.Now,
	}
	if p.Channel != nil {
		n.publish = p.Channel.PublishWithContext
	}
	return n
}

func (n *Notifier) Enabled() bool { return n.publish != nil }

// BuildPublished is a no-op when RabbitMQ is disabled.
func (n *Notifier) BuildPublished(ctx context.Context, data BuildPublishedData) error {
	if !n.Enabled() {
		n.logger.Debugw("notify_skipped", "reason", "rabbitmq disabled", "run_id", data.RunID)
		return nil
	}

	ex := n.cfg.Exchange
	if ex == "" {
		ex = defaultExchange
	}
	key := n.cfg.RoutingKey
	if key == "" {
		key = defaultRoutingKey
	}

	now := n.now().UTC()
	env := BuildPublishedEnvelope{
		EventName: EventBuildPublished,
		EventID:   "run:" + data.RunID,
		TS:        now,
		Data:      data,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s: %w", EventBuildPublished, err)
	}

	if n.channel != nil && n.cfg.DeclareTopology {
		if err := n.channel.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("rabbitmq exchange declare %s: %w", ex, err)
		}
	}

	if err := n.publish(ctx, ex, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    now,
		MessageId:    env.EventID,
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", EventBuildPublished, err)
	}

	n.logger.Infow("notify_published", "exchange", ex, "routing_key", key, "event_id", env.EventID, "item_id", data.ItemID)
	return nil
}

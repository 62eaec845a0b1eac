// Package subscriber consumes low stock events from JetStream and surfaces
// them as structured log alerts.
package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/mvelarde/puntoventa/pkg/config"
	"github.com/mvelarde/puntoventa/pkg/messaging/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"
)

// Start initializes the JetStream consumer and starts multiple worker goroutines to process messages.
func Start(ctx context.Context, js jetstream.JetStream, subscriberCfg config.SubscriberConfig, logger *slog.Logger) error {
	cfg := jetstream.ConsumerConfig{
		FilterSubject: subscriberCfg.Subject,
		Durable:       subscriberCfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
	}
	consumer, err := js.CreateOrUpdateConsumer(ctx, subscriberCfg.Stream, cfg)
	if err != nil {
		return err
	}
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < subscriberCfg.Workers; i++ {
		g.Go(func() error {
			return runWorker(gCtx, consumer, subscriberCfg, logger)
		})
	}
	return g.Wait()
}

// runWorker fetches message batches from the consumer until ctx is done.
func runWorker(ctx context.Context, consumer jetstream.Consumer, cfg config.SubscriberConfig, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			batch, err := consumer.Fetch(cfg.Batch, jetstream.FetchMaxWait(cfg.Timeout))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				logger.Error("failed to fetch messages", "error", err)
				time.Sleep(cfg.Interval)
				continue
			}
			for msg := range batch.Messages() {
				handleMessage(msg, logger)
			}
		}
	}
}

// ackableMsg is the subset of jetstream.Msg the handler needs.
type ackableMsg interface {
	Data() []byte
	Ack() error
	Nak() error
}

// handleMessage decodes one low stock event and logs the alert. Undecodable
// payloads are negatively acknowledged for redelivery.
func handleMessage(msg ackableMsg, logger *slog.Logger) {
	if msg == nil {
		logger.Error("received nil message")
		return
	}
	var event events.LowStockEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		logger.Error("failed to unmarshal message", "error", err)
		if err := msg.Nak(); err != nil {
			logger.Error("failed to nack message", "error", err)
		}
		return
	}

	level := slog.LevelInfo
	if event.Critical {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "low stock alert",
		slog.String("product_id", event.ProductID.String()),
		slog.String("product", event.ProductName),
		slog.Int("quantity", int(event.Quantity)),
		slog.Int("threshold", int(event.Threshold)),
		slog.Bool("critical", event.Critical),
		slog.String("occurred_at", event.OccurredAt.Format(time.RFC3339)))

	if err := msg.Ack(); err != nil {
		logger.Error("failed to ack message", "error", err)
	}
}

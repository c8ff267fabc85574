package receipt

import (
	"context"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/segmentio/kafka-go"
)

const batchSize = 100

type Outbox interface {
	Unpublished(ctx context.Context, limit int) ([]Receipt, error)
	MarkPublished(ctx context.Context, id string) error
}

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Publisher struct {
	outbox Outbox
	writer MessageWriter
	tick   time.Duration
	log    *slog.Logger
}

func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func NewPublisher(outbox Outbox, writer MessageWriter, tick time.Duration, log *slog.Logger) *Publisher {
	if tick <= 0 {
		tick = 2 * time.Second
	}
	return &Publisher{
		outbox: outbox,
		writer: writer,
		tick:   tick,
		log:    logger.OrDiscard(log).With("component", "receipt-publisher"),
	}
}

// Run relays pending receipts on every tick until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.publishPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// publishPending returns how many receipts were relayed.
func (p *Publisher) publishPending(ctx context.Context) int {
	receipts, err := p.outbox.Unpublished(ctx, batchSize)
	if err != nil {
		p.log.ErrorContext(ctx, "failed to fetch receipts", "error", err)
		return 0
	}

	published := 0
	for _, r := range receipts {
		msg := kafka.Message{
			Key:   []byte(r.OrderID),
			Value: r.Payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte("OrderConfirmed")},
				{Key: "receipt_id", Value: []byte(r.ID)},
			},
		}
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.log.ErrorContext(ctx, "failed to publish receipt", "receipt_id", r.ID, "error", err)
			continue
		}
		if err := p.outbox.MarkPublished(ctx, r.ID); err != nil {
			p.log.ErrorContext(ctx, "failed to mark receipt as published", "receipt_id", r.ID, "error", err)
			continue
		}
		published++
	}
	return published
}

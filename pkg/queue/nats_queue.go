package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const streamName = "DOCUMENTS"

// NatsPublisher publishes to a durable JetStream stream.
type NatsPublisher struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	subject string
}

func NewNatsPublisher(url, topic string) (*NatsPublisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectFor(topic)},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream %q: %w", streamName, err)
	}

	return &NatsPublisher{nc: nc, js: js, subject: subjectFor(topic)}, nil
}

func (p *NatsPublisher) Publish(ctx context.Context, payload []byte) error {
	if _, err := p.js.Publish(ctx, p.subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", p.subject, err)
	}
	return nil
}

func (p *NatsPublisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}

// NatsConsumer consumes a durable JetStream consumer with explicit acks.
// Prefetch bounds the unacknowledged in-flight window.
type NatsConsumer struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	topic    string
	durable  string
	prefetch int
	consume  jetstream.ConsumeContext
}

func NewNatsConsumer(url, topic, durable string, prefetch int) (*NatsConsumer, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NatsConsumer{
		nc:       nc,
		js:       js,
		topic:    topic,
		durable:  durable,
		prefetch: prefetch,
	}, nil
}

func (c *NatsConsumer) Consume(ctx context.Context, handler Handler) error {
	consumer, err := c.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		Durable:       c.durable,
		FilterSubject: subjectFor(c.topic),
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       15 * time.Minute,
		MaxAckPending: c.prefetch,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		handler(ctx, natsDelivery{msg: msg})
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	c.consume = cc

	return nil
}

// Stop halts delivery of new messages. The connection stays open so in-flight
// deliveries can still be acked or naked.
func (c *NatsConsumer) Stop() error {
	if c.consume != nil {
		c.consume.Stop()
		c.consume = nil
	}
	return nil
}

func (c *NatsConsumer) Close() error {
	if c.consume != nil {
		c.consume.Stop()
	}
	if c.nc != nil {
		c.nc.Close()
	}
	return nil
}

type natsDelivery struct {
	msg jetstream.Msg
}

func (d natsDelivery) Payload() []byte {
	return d.msg.Data()
}

func (d natsDelivery) Ack() error {
	return d.msg.Ack()
}

func (d natsDelivery) Nak() error {
	return d.msg.Nak()
}

func subjectFor(topic string) string {
	return fmt.Sprintf("documents.%s", topic)
}

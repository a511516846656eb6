package queue

import "context"

// Delivery is one received message with manual acknowledgment.
type Delivery interface {
	Payload() []byte
	// Ack marks the message done; it will not be redelivered.
	Ack() error
	// Nak rejects the message and asks the broker to redeliver it.
	Nak() error
}

// Handler processes a single delivery and decides its acknowledgment.
type Handler func(ctx context.Context, d Delivery)

// Publisher sends payloads to the document-uploaded topic.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
	Close() error
}

// Consumer delivers messages to a handler until the context ends or Stop is
// called. Implementations bound in-flight deliveries by their prefetch
// configuration; processing concurrency is the subscriber's concern.
//
// Stop halts intake only, leaving the connection open so already-delivered
// messages can still be acknowledged. Close tears the connection down.
type Consumer interface {
	Consume(ctx context.Context, handler Handler) error
	Stop() error
	Close() error
}

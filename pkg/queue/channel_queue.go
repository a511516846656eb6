package queue

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChannelQueue is an in-process watermill gochannel driver. It backs local
// development and tests where a broker is overkill; deliveries still carry
// manual Ack/Nack semantics.
type ChannelQueue struct {
	pubSub      *gochannel.GoChannel
	topic       string
	stopConsume context.CancelFunc
}

func NewChannelQueue(topic string) *ChannelQueue {
	return &ChannelQueue{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewStdLogger(false, false),
		),
		topic: topic,
	}
}

func (q *ChannelQueue) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return q.pubSub.Publish(q.topic, msg)
}

func (q *ChannelQueue) Consume(ctx context.Context, handler Handler) error {
	// Subscribe on a derived context so Stop can end intake without
	// canceling handlers that received the consume context.
	subCtx, cancel := context.WithCancel(ctx)
	messages, err := q.pubSub.Subscribe(subCtx, q.topic)
	if err != nil {
		cancel()
		return err
	}
	q.stopConsume = cancel

	go func() {
		for msg := range messages {
			handler(ctx, channelDelivery{msg: msg})
		}
	}()

	return nil
}

// Stop ends the subscription but keeps the pub/sub open for outstanding acks.
func (q *ChannelQueue) Stop() error {
	if q.stopConsume != nil {
		q.stopConsume()
		q.stopConsume = nil
	}
	return nil
}

func (q *ChannelQueue) Close() error {
	return q.pubSub.Close()
}

type channelDelivery struct {
	msg *message.Message
}

func (d channelDelivery) Payload() []byte {
	return d.msg.Payload
}

func (d channelDelivery) Ack() error {
	d.msg.Ack()
	return nil
}

func (d channelDelivery) Nak() error {
	d.msg.Nack()
	return nil
}

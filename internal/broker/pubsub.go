package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher pushes a room-addressed payload onto the stream.
func Publisher(ctx context.Context, js jetstream.JetStream, roomID string, payload any) error {
	if js == nil {
		return fmt.Errorf("jetstream interface is nil")
	}

	p, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not encode payload to JSON: %w", err)
	}

	subject := RoomSubject(roomID)
	_, err = js.Publish(ctx, subject, p, jetstream.WithMsgID(uuid.NewString()))
	if err != nil {
		return fmt.Errorf("failed to publish to stream [%s]: %v", subject, err)
	}

	return nil
}

// Subscriber consumes every room subject on the stream and decodes each
// message into recv. Undecodable messages are terminated, not retried.
func Subscriber[T any](ctx context.Context, stream jetstream.Stream, recv chan T) error {
	consumer, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{})
	if err != nil {
		return fmt.Errorf("failed to create or update consumer: %w", err)
	}

	consumeHandler := func(msg jetstream.Msg) {
		var payload T

		if err := json.Unmarshal(msg.Data(), &payload); err != nil {
			msg.Term()
			log.Printf("could not decode payload: %v", err)
			return
		}

		msg.Ack()

		recv <- payload
	}

	optErrHandler := jetstream.ConsumeErrHandler(func(cc jetstream.ConsumeContext, err error) {
		log.Printf("consumer error: %v", err)
		cc.Drain()
	})

	consumeCtx, err := consumer.Consume(consumeHandler, optErrHandler)
	if err != nil {
		return fmt.Errorf("failed to start consuming messages: %w", err)
	}

	go func() {
		<-ctx.Done()
		consumeCtx.Drain()
	}()

	return nil
}

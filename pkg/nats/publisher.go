package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/productcatalog/pkg/messaging"
	"github.com/nats-io/nats.go/jetstream"
)

// streamPublisher is the subset of jetstream.JetStream used for publishing.
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type NatsPublisher struct {
	js streamPublisher
}

var _ messaging.Publisher = (*NatsPublisher)(nil)

func NewNatsPublisher(js jetstream.JetStream) *NatsPublisher {
	return &NatsPublisher{js: js}
}

// Publish sends the event payload to its subject. Identified events are published
// with their id as Nats-Msg-Id so the stream drops duplicates.
func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	var opts []jetstream.PublishOpt
	if ide, ok := event.(messaging.Identified); ok && ide.ID() != "" {
		opts = append(opts, jetstream.WithMsgID(ide.ID()))
	}
	if _, err = p.js.Publish(ctx, event.Subject(), data, opts...); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Subject(), err)
	}
	return nil
}

// Package events publishes catalog change events over NATS JetStream so
// external consumers (storefront caches, search indexers) can react to
// product mutations.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

const (
	streamName = "CATALOG"

	// SubjectProductUpdated is emitted after any ProductInfo create/update,
	// including stock decrements from order confirmation.
	SubjectProductUpdated = "catalog.product.updated"
)

// ProductEvent is the payload published for product info changes
type ProductEvent struct {
	EventType     string    `json:"eventType"`
	ProductInfoID uuid.UUID `json:"productInfoId"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher publishes catalog events to NATS JetStream
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the catalog stream exists
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("storefront-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infof("[NATS] Reconnected to %s", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warnf("[NATS] Disconnected: %v", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"catalog.>"},
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to ensure catalog stream (may already exist)")
	}

	return &Publisher{
		nc:     nc,
		js:     js,
		logger: logger.WithField("component", "catalog-events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// PublishProductUpdated publishes a catalog.product.updated event.
// Delivery is at-least-once; failures are logged, never surfaced to the
// mutation that triggered them.
func (p *Publisher) PublishProductUpdated(ctx context.Context, productInfoID uuid.UUID) error {
	event := ProductEvent{
		EventType:     SubjectProductUpdated,
		ProductInfoID: productInfoID,
		Timestamp:     time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}
	if _, err := p.js.Publish(ctx, SubjectProductUpdated, data); err != nil {
		p.logger.WithError(err).WithField("product_info_id", productInfoID).
			Warn("Failed to publish product event")
		return err
	}
	return nil
}

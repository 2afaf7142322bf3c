package events

import (
	"context"
	"fmt"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"variations-service/internal/models"
)

// Change types carried on product.updated events
const (
	ChangeVariationsSaved        = "variations_saved"
	ChangeVariationTypeChanged   = "variation_type_changed"
	ChangeVariationOptionChanged = "variation_option_changed"
)

// Publisher wraps the go-shared events publisher for variation events
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher connects to NATS and makes sure the products stream exists
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	if natsURL == "" {
		// Default to GKE internal NATS service URL
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "variations-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create events publisher: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := publisher.EnsureStream(ctx, events.StreamProducts, []string{"product.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure products stream (may already exist)")
	}

	return &Publisher{
		publisher: publisher,
		logger:    logger.WithField("component", "variations-events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p != nil && p.publisher != nil {
		p.publisher.Close()
	}
}

// PublishVariationsSaved announces a replaced variation grid
func (p *Publisher) PublishVariationsSaved(ctx context.Context, product *models.Product, actorID string, saved, skipped int) error {
	if p == nil {
		return nil
	}
	event := p.buildProductEvent(product, actorID, ChangeVariationsSaved)
	event.ChangedFields = []string{"variations"}
	event.OldValue = map[string]interface{}{"variantCount": len(product.Variants)}
	event.NewValue = map[string]interface{}{
		"variantCount": saved,
		"skipped":      skipped,
	}
	return p.publish(ctx, event)
}

// PublishVariationTypeChanged announces a created, updated or deleted axis
func (p *Publisher) PublishVariationTypeChanged(ctx context.Context, product *models.Product, actorID string, typeID uuid.UUID, action string) error {
	if p == nil {
		return nil
	}
	event := p.buildProductEvent(product, actorID, ChangeVariationTypeChanged)
	event.ChangedFields = []string{"variationTypes"}
	event.NewValue = map[string]interface{}{
		"variationTypeId": typeID.String(),
		"action":          action,
	}
	return p.publish(ctx, event)
}

// PublishVariationOptionChanged announces a created, updated or deleted option
func (p *Publisher) PublishVariationOptionChanged(ctx context.Context, product *models.Product, actorID string, optionID uuid.UUID, action string) error {
	if p == nil {
		return nil
	}
	event := p.buildProductEvent(product, actorID, ChangeVariationOptionChanged)
	event.ChangedFields = []string{"variationOptions"}
	event.NewValue = map[string]interface{}{
		"variationOptionId": optionID.String(),
		"action":            action,
	}
	return p.publish(ctx, event)
}

func (p *Publisher) buildProductEvent(product *models.Product, actorID, changeType string) *events.ProductEvent {
	event := events.NewProductEvent(events.ProductUpdated, product.TenantID)
	event.SourceID = uuid.New().String()
	event.ActorID = actorID
	event.ChangeType = changeType
	event.ProductID = product.ID.String()
	event.ProductName = product.Name
	event.Status = string(product.Status)
	event.Price = product.Price.InexactFloat64()
	return event
}

// publish sends the event asynchronously; failures are only logged
func (p *Publisher) publish(ctx context.Context, event *events.ProductEvent) error {
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := p.publisher.PublishProduct(pubCtx, event); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType":  event.EventType,
				"changeType": event.ChangeType,
				"productID":  event.ProductID,
				"tenantID":   event.TenantID,
			}).WithError(err).Error("Failed to publish variation event")
		} else {
			p.logger.WithFields(logrus.Fields{
				"eventType":  event.EventType,
				"changeType": event.ChangeType,
				"productID":  event.ProductID,
				"tenantID":   event.TenantID,
			}).Info("Variation event published")
		}
	}()

	return nil
}

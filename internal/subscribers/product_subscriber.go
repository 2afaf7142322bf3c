package subscribers

import (
	"context"
	"encoding/json"
	"time"

	gosharedevents "github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// VariationPurger drops the variation data of removed products
type VariationPurger interface {
	PurgeProductVariations(ctx context.Context, tenantID string, productIDs []uuid.UUID) (int64, error)
}

// ProductSubscriber removes variation types, options and variants when the
// owning product is deleted elsewhere
type ProductSubscriber struct {
	subscriber *gosharedevents.Subscriber
	purger     VariationPurger
	logger     *logrus.Entry
	cancel     context.CancelFunc
}

// NewProductSubscriber creates a new product event subscriber
func NewProductSubscriber(
	natsURL string,
	purger VariationPurger,
	logger *logrus.Logger,
) (*ProductSubscriber, error) {
	if natsURL == "" {
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := gosharedevents.DefaultSubscriberConfig(natsURL, "variations-service-products")
	config.Name = "variations-service-product-subscriber"
	config.DeliverPolicy = "new"
	config.MaxDeliver = 3
	config.AckWait = 30 * time.Second

	subscriber, err := gosharedevents.NewSubscriber(config, logger)
	if err != nil {
		return nil, err
	}

	return &ProductSubscriber{
		subscriber: subscriber,
		purger:     purger,
		logger:     logger.WithField("component", "product-subscriber"),
	}, nil
}

// Start starts listening for product deletions
func (s *ProductSubscriber) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	subjects := []string{gosharedevents.ProductDeleted}

	s.logger.Info("Starting product event subscription...")

	err := s.subscriber.Subscribe(ctx, gosharedevents.StreamProducts, subjects, s.handleProductMessage)
	if err != nil {
		return err
	}

	s.logger.WithField("subjects", subjects).Info("Product subscriber started successfully")
	return nil
}

func (s *ProductSubscriber) handleProductMessage(ctx context.Context, msg *gosharedevents.Message) error {
	var event gosharedevents.ProductEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		s.logger.WithError(err).Error("Failed to unmarshal product event")
		return nil // Don't retry for invalid data
	}

	if event.EventType != gosharedevents.ProductDeleted {
		s.logger.WithField("event_type", event.EventType).Debug("Ignoring product event")
		return nil
	}

	productID, err := uuid.Parse(event.ProductID)
	if err != nil {
		s.logger.WithError(err).WithField("product_id", event.ProductID).Error("Invalid product ID in product event")
		return nil
	}

	deleted, err := s.purger.PurgeProductVariations(ctx, event.TenantID, []uuid.UUID{productID})
	if err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Error("Failed to purge product variations")
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id":  event.TenantID,
		"product_id": productID,
		"deleted":    deleted,
	}).Info("Purged variations of deleted product")
	return nil
}

// Stop stops the product subscriber
func (s *ProductSubscriber) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.subscriber != nil {
		s.subscriber.Close()
	}
	s.logger.Info("Product subscriber stopped")
}

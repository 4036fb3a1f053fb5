package processors

import (
	"context"
	"fmt"

	"storefront/internal/events"
	"storefront/internal/logger"
	"storefront/internal/models"
)

type CatalogSyncer interface {
	SyncCategory(ctx context.Context, category models.Category) (*models.SyncRun, error)
}

type EventProcessor struct {
	syncer CatalogSyncer
	logger *logger.Logger
}

func NewEventProcessor(syncer CatalogSyncer, logger *logger.Logger) *EventProcessor {
	return &EventProcessor{
		syncer: syncer,
		logger: logger,
	}
}

// Process handles one decoded event. Sync requests run the snapshot sync;
// cart activity is only recorded in the log.
func (ep *EventProcessor) Process(ctx context.Context, event events.Event) error {
	ep.logger.Debug("Processing event: %s", event.Type)

	switch event.Type {
	case events.TypeCatalogSyncRequest:
		if !event.Category.Valid() {
			return fmt.Errorf("sync requested for unknown category %q", event.Category)
		}
		run, err := ep.syncer.SyncCategory(ctx, event.Category)
		if err != nil {
			return fmt.Errorf("sync %s: %w", event.Category, err)
		}
		ep.logger.Info("Sync run %s finished with %d products", run.ID, run.ProductCount)

	case events.TypeCartItemAdded, events.TypeCartItemRemoved, events.TypeCartQuantityUpdated:
		ep.logger.Info("Cart %s: %s product=%s quantity=%d", event.SessionID, event.Type, event.ProductID, event.Quantity)

	case events.TypeCartCleared:
		ep.logger.Info("Cart %s cleared", event.SessionID)

	default:
		ep.logger.Warn("Ignoring unknown event type %s", event.Type)
	}

	return nil
}

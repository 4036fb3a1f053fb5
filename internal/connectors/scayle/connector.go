// Package scayle stores snapshots of the upstream catalog so synced categories can
// be inspected without calling the catalog API.
package scayle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/logger"
	"storefront/internal/models"

	"gorm.io/gorm"
)

// Source is the live catalog the connector pulls from.
type Source interface {
	Fetch(ctx context.Context, category models.Category, limit int) ([]models.Product, error)
}

type ScayleConnector struct {
	db       *gorm.DB
	source   Source
	pageSize int
	logger   *logger.Logger
	now      func() time.Time
}

func New(db *gorm.DB, source Source, pageSize int, logger *logger.Logger) *ScayleConnector {
	return &ScayleConnector{
		db:       db,
		source:   source,
		pageSize: pageSize,
		logger:   logger,
		now:      time.Now,
	}
}

// SyncCategory fetches a category and upserts every product into the snapshot.
// The returned run is persisted in both the success and failure case.
func (sc *ScayleConnector) SyncCategory(ctx context.Context, category models.Category) (*models.SyncRun, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	db := sc.db.WithContext(ctx)
	run := &models.SyncRun{
		Category:  category,
		Status:    models.SyncStatusRunning,
		StartedAt: sc.now(),
	}
	if err := db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to record sync run: %w", err)
	}

	sc.logger.Info("Syncing %s from catalog API", category)

	products, err := sc.source.Fetch(ctx, category, sc.pageSize)
	if err != nil {
		return sc.finish(db, run, nil, err)
	}

	syncedAt := sc.now()
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, product := range products {
			if err := upsert(tx, models.NewCatalogProduct(product, syncedAt)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return sc.finish(db, run, nil, err)
	}

	return sc.finish(db, run, products, nil)
}

func (sc *ScayleConnector) finish(db *gorm.DB, run *models.SyncRun, products []models.Product, syncErr error) (*models.SyncRun, error) {
	finished := sc.now()
	run.FinishedAt = &finished

	if syncErr != nil {
		msg := syncErr.Error()
		run.Status = models.SyncStatusFailed
		run.Error = &msg
		sc.logger.Error("Sync of %s failed: %v", run.Category, syncErr)
	} else {
		run.Status = models.SyncStatusSucceeded
		run.ProductCount = len(products)
		run.Brands = catalog.Brands(products)
		sc.logger.Info("Synced %d %s products", run.ProductCount, run.Category)
	}

	if err := db.Save(run).Error; err != nil {
		return run, errors.Join(syncErr, fmt.Errorf("failed to update sync run: %w", err))
	}
	return run, syncErr
}

func upsert(tx *gorm.DB, record *models.CatalogProduct) error {
	var existing models.CatalogProduct
	err := tx.Where("category = ? AND external_id = ?", record.Category, record.ExternalID).First(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create product %s: %w", record.ExternalID, err)
		}
	case err == nil:
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		if err := tx.Save(record).Error; err != nil {
			return fmt.Errorf("failed to update product %s: %w", record.ExternalID, err)
		}
	default:
		return fmt.Errorf("failed to look up product %s: %w", record.ExternalID, err)
	}
	return nil
}

// Snapshot returns the stored products of a category ordered by name.
func (sc *ScayleConnector) Snapshot(ctx context.Context, category models.Category) ([]models.Product, error) {
	var records []models.CatalogProduct
	if err := sc.db.WithContext(ctx).
		Where("category = ?", category).
		Order("name ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	products := make([]models.Product, len(records))
	for i := range records {
		products[i] = records[i].Product()
	}
	return products, nil
}

// Runs lists the latest sync runs, optionally for one category.
func (sc *ScayleConnector) Runs(ctx context.Context, category models.Category, limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := sc.db.WithContext(ctx).Model(&models.SyncRun{})
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var runs []models.SyncRun
	if err := query.Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to load sync runs: %w", err)
	}
	return runs, nil
}

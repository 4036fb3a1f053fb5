package scayle_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"storefront/internal/connectors/scayle"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	products map[models.Category][]models.Product
	err      error
	calls    int
}

func (f *fakeSource) Fetch(ctx context.Context, category models.Category, limit int) ([]models.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.products[category], nil
}

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func glasses(id, name, brand string, price float64) models.Product {
	return models.Product{
		ID:         id,
		Name:       name,
		Brand:      brand,
		Price:      price,
		Category:   models.CategoryGlasses,
		CategoryID: 4,
		InStock:    true,
	}
}

func TestScayleConnector_SyncCategory(t *testing.T) {
	db := newTestDB(t)
	source := &fakeSource{products: map[models.Category][]models.Product{
		models.CategoryGlasses: {
			glasses("2", "Round", "Ray-Ban", 120),
			glasses("1", "Aviator", "Oakley", 99.5),
		},
	}}
	connector := scayle.New(db.DB, source, 50, logger.NewNop())

	run, err := connector.SyncCategory(context.Background(), models.CategoryGlasses)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusSucceeded, run.Status)
	assert.Equal(t, 2, run.ProductCount)
	assert.Equal(t, []string{"Oakley", "Ray-Ban"}, []string(run.Brands))
	assert.NotNil(t, run.FinishedAt)
	assert.Nil(t, run.Error)

	snapshot, err := connector.Snapshot(context.Background(), models.CategoryGlasses)
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, "Aviator", snapshot[0].Name)
	assert.Equal(t, "1", snapshot[0].ID)
	assert.Equal(t, 4, snapshot[0].CategoryID)
}

func TestScayleConnector_SyncCategoryUpdatesExisting(t *testing.T) {
	db := newTestDB(t)
	source := &fakeSource{products: map[models.Category][]models.Product{
		models.CategoryGlasses: {glasses("1", "Aviator", "Oakley", 99.5)},
	}}
	connector := scayle.New(db.DB, source, 50, logger.NewNop())

	_, err := connector.SyncCategory(context.Background(), models.CategoryGlasses)
	require.NoError(t, err)

	source.products[models.CategoryGlasses] = []models.Product{glasses("1", "Aviator II", "Oakley", 109)}
	_, err = connector.SyncCategory(context.Background(), models.CategoryGlasses)
	require.NoError(t, err)

	snapshot, err := connector.Snapshot(context.Background(), models.CategoryGlasses)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Aviator II", snapshot[0].Name)
	assert.Equal(t, 109.0, snapshot[0].Price)

	var count int64
	require.NoError(t, db.DB.Model(&models.CatalogProduct{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestScayleConnector_SyncCategoryFailure(t *testing.T) {
	db := newTestDB(t)
	source := &fakeSource{err: errors.New("upstream down")}
	connector := scayle.New(db.DB, source, 50, logger.NewNop())

	run, err := connector.SyncCategory(context.Background(), models.CategoryGlasses)
	require.Error(t, err)
	require.NotNil(t, run)
	assert.Equal(t, models.SyncStatusFailed, run.Status)
	require.NotNil(t, run.Error)
	assert.Contains(t, *run.Error, "upstream down")

	runs, err := connector.Runs(context.Background(), models.CategoryGlasses, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, models.SyncStatusFailed, runs[0].Status)
}

func TestScayleConnector_SyncCategoryUnknown(t *testing.T) {
	db := newTestDB(t)
	source := &fakeSource{}
	connector := scayle.New(db.DB, source, 50, logger.NewNop())

	_, err := connector.SyncCategory(context.Background(), models.Category("hats"))
	assert.Error(t, err)
	assert.Equal(t, 0, source.calls)
}

func TestScayleConnector_Runs(t *testing.T) {
	db := newTestDB(t)
	source := &fakeSource{products: map[models.Category][]models.Product{}}
	connector := scayle.New(db.DB, source, 50, logger.NewNop())

	for _, category := range []models.Category{models.CategoryGlasses, models.CategorySunglasses, models.CategoryGlasses} {
		_, err := connector.SyncCategory(context.Background(), category)
		require.NoError(t, err)
	}

	all, err := connector.Runs(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	glassesRuns, err := connector.Runs(context.Background(), models.CategoryGlasses, 0)
	require.NoError(t, err)
	assert.Len(t, glassesRuns, 2)
	for _, run := range glassesRuns {
		assert.Equal(t, 0, run.ProductCount)
	}
}

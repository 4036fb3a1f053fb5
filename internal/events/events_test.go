package events_test

import (
	"testing"

	"storefront/internal/events"
	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Run("sync_request", func(t *testing.T) {
		event, err := events.Decode([]byte(`{"type": "catalog.sync_requested", "category": "glasses", "timestamp": "2026-01-02T03:04:05Z"}`))
		require.NoError(t, err)
		assert.Equal(t, events.TypeCatalogSyncRequest, event.Type)
		assert.Equal(t, models.CategoryGlasses, event.Category)
		assert.Equal(t, "glasses", event.Key())
	})

	t.Run("cart_event_keyed_by_session", func(t *testing.T) {
		event, err := events.Decode([]byte(`{"type": "cart.item_added", "session_id": "abc", "product_id": "1", "quantity": 2}`))
		require.NoError(t, err)
		assert.Equal(t, "abc", event.Key())
		assert.Equal(t, 2, event.Quantity)
	})

	t.Run("missing_type", func(t *testing.T) {
		_, err := events.Decode([]byte(`{"category": "glasses"}`))
		assert.Error(t, err)
	})

	t.Run("not_json", func(t *testing.T) {
		_, err := events.Decode([]byte(`nope`))
		assert.Error(t, err)
	})
}

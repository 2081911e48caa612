package database

import (
	"testing"

	"github.com/Renal37/royal-threads-orders/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFeedEvent(t *testing.T) {
	t.Run("Should decode full payload", func(t *testing.T) {
		payload := `{
			"op": "INSERT",
			"record": {
				"id": 1,
				"reference": "ref_1",
				"amount": 150,
				"status": "paid",
				"items": [{"id": 1, "quantity": 2, "price": 50}],
				"created_at": "2026-08-30T14:05:00+00:00",
				"updated_at": "2026-08-30T14:05:00+00:00"
			}
		}`

		event, slim, err := decodeFeedEvent(payload)

		require.NoError(t, err)
		assert.False(t, slim)
		assert.Equal(t, models.OpInsert, event.Op)
		assert.Equal(t, "ref_1", event.Order.Reference)
		assert.Equal(t, models.StatusPaid, event.Order.Status)
		require.Len(t, event.Order.Items, 1)
		assert.Equal(t, 2, event.Order.Items[0].Quantity)
	})

	t.Run("Should mark id-only payload for refetch", func(t *testing.T) {
		// Так триггер публикует строку, не влезшую в лимит pg_notify
		payload := `{"op": "INSERT", "record": {"id": 42}}`

		event, slim, err := decodeFeedEvent(payload)

		require.NoError(t, err)
		assert.True(t, slim)
		assert.Equal(t, int64(42), event.Order.ID)
	})

	t.Run("Should return error for garbage payload", func(t *testing.T) {
		_, _, err := decodeFeedEvent("not a json")

		assert.Error(t, err)
	})
}

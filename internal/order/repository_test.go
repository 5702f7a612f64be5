package order_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juberthrdzz/vapi-voice-agent/internal/order"
	"github.com/juberthrdzz/vapi-voice-agent/internal/store"
)

func newTestRepo(t *testing.T) (order.Repository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return order.NewRepository(store.NewRedis(client)), mr
}

func TestSaveAndGet(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	o := &order.Order{
		OrderID:       "order_1700000000_4567",
		CustomerName:  "Maria Lopez",
		CustomerPhone: "+15551234567",
		Items: []order.Item{
			{ItemID: "main1", Quantity: 2, SpecialRequests: "no capers"},
			{ItemID: "dess1", Quantity: 1},
		},
		TotalAmount: 44.97,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Save(ctx, o))

	got, err := repo.GetByID(ctx, o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderID, got.OrderID)
	assert.Equal(t, o.CustomerPhone, got.CustomerPhone)
	assert.Equal(t, o.TotalAmount, got.TotalAmount)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "no capers", got.Items[0].SpecialRequests)
}

func TestSaveSetsRetentionTTL(t *testing.T) {
	repo, mr := newTestRepo(t)

	o := &order.Order{OrderID: "order_1_9999", CustomerPhone: "9999"}
	require.NoError(t, repo.Save(context.Background(), o))

	assert.Equal(t, order.RetentionTTL, mr.TTL(order.Key(o.OrderID)))
}

func TestGetUnknownOrder(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.GetByID(context.Background(), "order_0_0000")
	assert.True(t, errors.Is(err, order.ErrOrderNotFound))
}

func TestMintID(t *testing.T) {
	now := time.Unix(1700000000, 0)

	assert.Equal(t, "order_1700000000_4567", order.MintID(now, "+15551234567"))
	assert.Equal(t, "order_1700000000_0000", order.MintID(now, "+52 555 000 0000"))
	// phones shorter than four characters are used whole
	assert.Equal(t, "order_1700000000_123", order.MintID(now, "123"))
}

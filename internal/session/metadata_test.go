package session_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juberthrdzz/vapi-voice-agent/internal/session"
	"github.com/juberthrdzz/vapi-voice-agent/internal/store"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return session.NewStore(store.NewRedis(client), logrus.New())
}

func TestGetMissingSessionDefaultsToEmpty(t *testing.T) {
	s := newTestStore(t)

	meta := s.Get(context.Background(), "nobody")
	assert.Equal(t, session.Metadata{}, meta)
}

func TestSetFieldRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetField(ctx, "s1", session.FieldCustomerName, "Maria Lopez"))
	require.NoError(t, s.SetField(ctx, "s1", session.FieldOrderType, "delivery"))
	require.NoError(t, s.SetField(ctx, "s1", session.FieldAddress, "Av. Reforma 100"))

	meta := s.Get(ctx, "s1")
	assert.Equal(t, "Maria Lopez", meta.CustomerName)
	assert.Equal(t, "delivery", meta.OrderType)
	assert.Equal(t, "Av. Reforma 100", meta.Address)
	assert.Empty(t, meta.Phone)
	assert.Empty(t, meta.PaymentMethod)
	assert.Empty(t, meta.Notes)
}

func TestSetFieldRejectsUnknownField(t *testing.T) {
	s := newTestStore(t)

	err := s.SetField(context.Background(), "s1", "favorite_color", "blue")
	assert.Error(t, err)
}

// A broken store must not break callers that only want advisory fields.
func TestGetDegradesOnStoreFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := session.NewStore(store.NewRedis(client), logrus.New())

	mr.Close()

	meta := s.Get(context.Background(), "s1")
	assert.Equal(t, session.Metadata{}, meta)
}

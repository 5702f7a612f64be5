package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/juberthrdzz/vapi-voice-agent/internal/store"
)

// RetentionTTL is how long a persisted order stays readable.
const RetentionTTL = 24 * time.Hour

const keyPrefix = "order:"

var ErrOrderNotFound = errors.New("order not found")

type Repository interface {
	Save(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
}

type repo struct {
	kv store.Store
}

func NewRepository(kv store.Store) Repository {
	return &repo{kv: kv}
}

func Key(orderID string) string {
	return keyPrefix + orderID
}

func (r *repo) Save(ctx context.Context, o *Order) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	if err := r.kv.Set(ctx, Key(o.OrderID), string(raw), RetentionTTL); err != nil {
		return fmt.Errorf("persist order: %w", err)
	}
	return nil
}

func (r *repo) GetByID(ctx context.Context, orderID string) (*Order, error) {
	raw, err := r.kv.Get(ctx, Key(orderID))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}

	var o Order
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &o, nil
}

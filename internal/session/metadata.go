package session

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/juberthrdzz/vapi-voice-agent/internal/store"
)

const keyPrefix = "meta:"

const (
	FieldCustomerName  = "customer_name"
	FieldPhone         = "phone"
	FieldOrderType     = "order_type"
	FieldPaymentMethod = "payment_method"
	FieldNotes         = "notes"
	FieldAddress       = "address"
)

var knownFields = map[string]bool{
	FieldCustomerName:  true,
	FieldPhone:         true,
	FieldOrderType:     true,
	FieldPaymentMethod: true,
	FieldNotes:         true,
	FieldAddress:       true,
}

// Metadata holds the advisory per-session customer fields, stored apart
// from the cart. Nothing here is required for cart mutation; only checkout
// reads it.
type Metadata struct {
	CustomerName  string `json:"customer_name"`
	Phone         string `json:"phone"`
	OrderType     string `json:"order_type"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
	Address       string `json:"address"`
}

type Store struct {
	kv  store.Store
	log *logrus.Logger
}

func NewStore(kv store.Store, log *logrus.Logger) *Store {
	return &Store{kv: kv, log: log}
}

func Key(sessionID string) string {
	return keyPrefix + sessionID
}

// Get reads the session's metadata hash. Missing fields come back as empty
// strings, and a store failure degrades to all-empty metadata: these
// fields are advisory and must never block a request.
func (s *Store) Get(ctx context.Context, sessionID string) Metadata {
	fields, err := s.kv.HGetAll(ctx, Key(sessionID))
	if err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).
			Warn("failed to read session metadata, using defaults")
		return Metadata{}
	}

	return Metadata{
		CustomerName:  fields[FieldCustomerName],
		Phone:         fields[FieldPhone],
		OrderType:     fields[FieldOrderType],
		PaymentMethod: fields[FieldPaymentMethod],
		Notes:         fields[FieldNotes],
		Address:       fields[FieldAddress],
	}
}

// SetField writes one metadata field. Unknown field names are rejected so
// the hash cannot accumulate arbitrary keys.
func (s *Store) SetField(ctx context.Context, sessionID, field, value string) error {
	if !knownFields[field] {
		return fmt.Errorf("unknown metadata field: %s", field)
	}
	return s.kv.HSet(ctx, Key(sessionID), field, value)
}

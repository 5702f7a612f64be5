package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/juberthrdzz/vapi-voice-agent/internal/cart"
	"github.com/juberthrdzz/vapi-voice-agent/internal/menu"
	"github.com/juberthrdzz/vapi-voice-agent/internal/notify"
	"github.com/juberthrdzz/vapi-voice-agent/internal/order"
	"github.com/juberthrdzz/vapi-voice-agent/internal/session"
)

var (
	// ErrCartEmpty rejects checkout on a cart key that holds no lines.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrInvalidCustomerInfo rejects checkout without a name and phone.
	ErrInvalidCustomerInfo = errors.New("customer name and phone are required")
)

// CustomerInfo is the caller-supplied identity for a checkout. Stored
// session metadata takes precedence over these fields in the outbound
// notification when both are present.
type CustomerInfo struct {
	Name                string
	Phone               string
	SpecialInstructions string
}

// StatusConfirmed is the status of every successful checkout.
const StatusConfirmed = "confirmed"

// Result is the customer-visible outcome of a confirmed checkout.
type Result struct {
	OrderID     string
	TotalAmount float64
	Status      string
}

// Notifier delivers the human-readable order summary to the external
// order-intake service.
type Notifier interface {
	Send(ctx context.Context, p notify.Payload) error
}

// EventPublisher emits the OrderCreated event after persistence.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o *order.Order, sessionID string) error
}

// Service converts a session's cart into a persisted order. The order
// write is the single hard-failure boundary: everything after it (cart
// clearing, notification, events) is best-effort and only logged.
type Service struct {
	carts        *cart.Engine
	meta         *session.Store
	orders       order.Repository
	catalog      *menu.Catalog
	notifier     Notifier
	publisher    EventPublisher
	restaurantID string
	log          *logrus.Logger
}

func NewService(
	carts *cart.Engine,
	meta *session.Store,
	orders order.Repository,
	catalog *menu.Catalog,
	notifier Notifier,
	publisher EventPublisher,
	restaurantID string,
	log *logrus.Logger,
) *Service {
	return &Service{
		carts:        carts,
		meta:         meta,
		orders:       orders,
		catalog:      catalog,
		notifier:     notifier,
		publisher:    publisher,
		restaurantID: restaurantID,
		log:          log,
	}
}

// Checkout runs the conversion pipeline in strict order: load cart,
// validate customer info, compute totals, mint an order id, persist the
// order, clear the cart, notify the intake service. The caller sees
// success as soon as the order is persisted.
func (s *Service) Checkout(ctx context.Context, sessionID string, info CustomerInfo) (*Result, error) {
	lines, err := s.carts.Lines(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	if strings.TrimSpace(info.Name) == "" || strings.TrimSpace(info.Phone) == "" {
		return nil, ErrInvalidCustomerInfo
	}

	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, order.Item{
			ItemID:          l.ItemID,
			Quantity:        l.Quantity,
			SpecialRequests: l.SpecialRequests,
		})
	}
	total := cart.Total(lines)

	now := time.Now().UTC()
	o := &order.Order{
		OrderID:             order.MintID(now, info.Phone),
		CustomerName:        info.Name,
		CustomerPhone:       info.Phone,
		Items:               items,
		TotalAmount:         total,
		SpecialInstructions: info.SpecialInstructions,
		CreatedAt:           now,
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	// The order is durable from here on. Failures below are a lesser harm
	// than a lost order and must not change the caller-visible outcome.
	var followUp *multierror.Error

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		followUp = multierror.Append(followUp, fmt.Errorf("clear cart: %w", err))
	}

	if s.notifier != nil {
		if err := s.notifier.Send(ctx, s.buildPayload(ctx, sessionID, o, lines, info)); err != nil {
			followUp = multierror.Append(followUp, fmt.Errorf("notify order intake: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, o, sessionID); err != nil {
			followUp = multierror.Append(followUp, fmt.Errorf("publish OrderCreated: %w", err))
		}
	}

	if err := followUp.ErrorOrNil(); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"order_id":   o.OrderID,
			"session_id": sessionID,
		}).Warn("checkout confirmed with degraded follow-up steps")
	}

	return &Result{OrderID: o.OrderID, TotalAmount: total, Status: StatusConfirmed}, nil
}

// buildPayload assembles the intake notification. Session metadata wins
// over caller-supplied fields when both are present.
func (s *Service) buildPayload(ctx context.Context, sessionID string, o *order.Order, lines []cart.Line, info CustomerInfo) notify.Payload {
	meta := s.meta.Get(ctx, sessionID)

	name := meta.CustomerName
	if name == "" {
		name = info.Name
	}
	phone := meta.Phone
	if phone == "" {
		phone = info.Phone
	}
	notes := meta.Notes
	if notes == "" {
		notes = info.SpecialInstructions
	}

	return notify.Payload{
		CustomerName:  name,
		Phone:         phone,
		OrderType:     meta.OrderType,
		Dishes:        s.dishSummary(lines),
		TotalPrice:    o.TotalAmount,
		PaymentMethod: meta.PaymentMethod,
		Notes:         notes,
		Address:       meta.Address,
		RestaurantID:  s.restaurantID,
	}
}

// dishSummary renders the cart as "2 Grilled Salmon, 1 Tiramisu". The raw
// item id stands in when the catalog no longer knows an item; a cart and
// the catalog should never disagree, but a stale cart must not break the
// notification.
func (s *Service) dishSummary(lines []cart.Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		name := l.ItemID
		if item, err := s.catalog.Lookup(l.ItemID); err == nil {
			name = item.Name
		}
		parts = append(parts, fmt.Sprintf("%d %s", l.Quantity, name))
	}
	return strings.Join(parts, ", ")
}

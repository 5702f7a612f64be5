package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/juberthrdzz/vapi-voice-agent/internal/cart"
	"github.com/juberthrdzz/vapi-voice-agent/internal/checkout"
	"github.com/juberthrdzz/vapi-voice-agent/internal/menu"
	"github.com/juberthrdzz/vapi-voice-agent/internal/order"
	"github.com/juberthrdzz/vapi-voice-agent/internal/session"
	"github.com/juberthrdzz/vapi-voice-agent/internal/store"
	"github.com/juberthrdzz/vapi-voice-agent/internal/voice"
)

const (
	requestTimeout = 3 * time.Second
	// checkout carries its own 3s notification timeout on top of store I/O
	checkoutTimeout = 10 * time.Second

	estimatedTime = "25-30 minutes"
)

type Handler struct {
	carts    *cart.Engine
	checkout *checkout.Service
	orders   order.Repository
	catalog  *menu.Catalog
	meta     *session.Store
	kv       store.Store
	log      *logrus.Logger
}

func NewHandler(
	carts *cart.Engine,
	checkoutSvc *checkout.Service,
	orders order.Repository,
	catalog *menu.Catalog,
	meta *session.Store,
	kv store.Store,
	log *logrus.Logger,
) *Handler {
	return &Handler{
		carts:    carts,
		checkout: checkoutSvc,
		orders:   orders,
		catalog:  catalog,
		meta:     meta,
		kv:       kv,
		log:      log,
	}
}

type cartSummaryBody struct {
	TotalItems  int     `json:"total_items"`
	TotalAmount float64 `json:"total_amount"`
	ItemsInCart int     `json:"items_in_cart"`
}

func summaryBody(s cart.Summary) cartSummaryBody {
	return cartSummaryBody{
		TotalItems:  s.TotalItems,
		TotalAmount: s.TotalAmount,
		ItemsInCart: s.ItemsInCart,
	}
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Restaurant Voice Agent API is running",
	})
}

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	m, err := h.catalog.Menu()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) GetMenuCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	items, err := h.catalog.Category(category)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"items":    items,
	})
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID       string `json:"session_id"`
		ItemID          string `json:"item_id"`
		Quantity        int    `json:"quantity"`
		SpecialRequests string `json:"special_requests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.SessionID == "" || body.ItemID == "" {
		writeError(w, http.StatusBadRequest, "session_id and item_id are required")
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	summary, err := h.carts.Add(ctx, body.SessionID, body.ItemID, body.Quantity, body.SpecialRequests)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	name := body.ItemID
	for _, l := range summary.Items {
		if l.ItemID == body.ItemID {
			name = l.Name
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      fmt.Sprintf("Added %d x %s to cart", body.Quantity, name),
		"cart_summary": summaryBody(summary),
	})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing session_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	summary, err := h.carts.Get(ctx, sessionID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":   sessionID,
		"items":        summary.Items,
		"total_items":  summary.TotalItems,
		"total_amount": summary.TotalAmount,
	})
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	itemID := r.PathValue("item_id")
	if sessionID == "" || itemID == "" {
		writeError(w, http.StatusBadRequest, "missing session_id or item_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	summary, err := h.carts.Remove(ctx, sessionID, itemID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      fmt.Sprintf("Removed %s from cart", itemID),
		"cart_summary": summaryBody(summary),
	})
}

// RemoveFromCartIdempotent is the POST-based remove: a session without a
// cart succeeds as a no-op. Voice assistants retry freely against it.
func (h *Handler) RemoveFromCartIdempotent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
		ItemID    string `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.SessionID == "" || body.ItemID == "" {
		writeError(w, http.StatusBadRequest, "session_id and item_id are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if _, err := h.carts.RemoveIfPresent(ctx, body.SessionID, body.ItemID); err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing session_id")
		return
	}

	var body struct {
		CustomerName        string `json:"customer_name"`
		CustomerPhone       string `json:"customer_phone"`
		SpecialInstructions string `json:"special_instructions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkoutTimeout)
	defer cancel()

	result, err := h.checkout.Checkout(ctx, sessionID, checkout.CustomerInfo{
		Name:                body.CustomerName,
		Phone:               body.CustomerPhone,
		SpecialInstructions: body.SpecialInstructions,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"order_id":       result.OrderID,
		"status":         result.Status,
		"message":        fmt.Sprintf("Order placed successfully! Your order ID is %s", result.OrderID),
		"total_amount":   result.TotalAmount,
		"estimated_time": estimatedTime,
	})
}

// CreateOrder is the direct order path that bypasses the cart, kept for
// callers that assemble orders themselves.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerName  string       `json:"customer_name"`
		CustomerPhone string       `json:"customer_phone"`
		Items         []order.Item `json:"items"`
		TotalAmount   float64      `json:"total_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.CustomerPhone == "" || len(body.Items) == 0 {
		writeError(w, http.StatusBadRequest, "customer_phone and items are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	now := time.Now().UTC()
	o := &order.Order{
		OrderID:       order.MintID(now, body.CustomerPhone),
		CustomerName:  body.CustomerName,
		CustomerPhone: body.CustomerPhone,
		Items:         body.Items,
		TotalAmount:   cart.Round2(body.TotalAmount),
		CreatedAt:     now,
	}

	if err := h.orders.Save(ctx, o); err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"order_id":       o.OrderID,
		"status":         "confirmed",
		"message":        fmt.Sprintf("Order placed successfully! Your order ID is %s", o.OrderID),
		"estimated_time": estimatedTime,
	})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("order_id")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "missing order_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	o, err := h.orders.GetByID(ctx, orderID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"order_id":   orderID,
		"order_data": o,
	})
}

// SetSessionMeta writes per-session customer fields for later checkouts.
func (h *Handler) SetSessionMeta(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing session_id")
		return
	}

	var fields map[string]string
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	for field, value := range fields {
		if err := h.meta.SetField(ctx, sessionID, field, value); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) VoiceQuery(w http.ResponseWriter, r *http.Request) {
	var q voice.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if q.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	// Keep conversation context across requests; advisory, so a store
	// failure only logs.
	if err := h.kv.Set(ctx, voice.LastQueryKey(q.SessionID), q.Query, voice.LastQueryTTL); err != nil {
		h.log.WithError(err).WithField("session_id", q.SessionID).
			Warn("failed to store last voice query")
	}

	m, err := h.catalog.Menu()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, voice.Dispatch(q, m))
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, menu.ErrItemNotFound),
		errors.Is(err, menu.ErrCategoryNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, checkout.ErrCartEmpty),
		errors.Is(err, order.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrInvalidCustomerInfo):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

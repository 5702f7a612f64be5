package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/juberthrdzz/vapi-voice-agent/internal/menu"
	"github.com/juberthrdzz/vapi-voice-agent/internal/store"
)

// IdleTTL is how long an untouched cart survives in the store. Every write
// refreshes it.
const IdleTTL = time.Hour

const keyPrefix = "cart:"

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Line is one distinct menu item inside a cart. Name and price are copied
// from the catalog at add time, so a later menu change never alters a cart
// already in progress.
type Line struct {
	ItemID          string  `json:"item_id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	Quantity        int     `json:"quantity"`
	SpecialRequests string  `json:"special_requests,omitempty"`
}

// Summary is the caller-facing view of a cart after any operation.
type Summary struct {
	Items       []Line  `json:"items"`
	TotalItems  int     `json:"total_items"`
	TotalAmount float64 `json:"total_amount"`
	ItemsInCart int     `json:"items_in_cart"`
}

// Engine owns every cart mutation. Carts live exclusively in the store,
// keyed by session id; no copy survives between requests.
type Engine struct {
	kv      store.Store
	catalog *menu.Catalog
	log     *logrus.Logger
}

func NewEngine(kv store.Store, catalog *menu.Catalog, log *logrus.Logger) *Engine {
	return &Engine{kv: kv, catalog: catalog, log: log}
}

func Key(sessionID string) string {
	return keyPrefix + sessionID
}

// Round2 rounds an amount to two decimal places. Totals are rounded once,
// after summing, so per-line rounding error cannot compound.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Total returns the rounded sum of quantity x price over all lines.
func Total(lines []Line) float64 {
	total := 0.0
	for _, l := range lines {
		total += float64(l.Quantity) * l.Price
	}
	return Round2(total)
}

func Summarize(lines []Line) Summary {
	s := Summary{Items: lines, TotalAmount: Total(lines), ItemsInCart: len(lines)}
	if s.Items == nil {
		s.Items = []Line{}
	}
	for _, l := range lines {
		s.TotalItems += l.Quantity
	}
	return s
}

// Lines loads the stored cart. ErrCartNotFound means no cart key exists;
// an empty slice means a cart key exists but holds no lines (which the
// engine itself never writes).
func (e *Engine) Lines(ctx context.Context, sessionID string) ([]Line, error) {
	raw, err := e.kv.Get(ctx, Key(sessionID))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	if lines == nil {
		lines = []Line{}
	}
	return lines, nil
}

func (e *Engine) save(ctx context.Context, sessionID string, lines []Line) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := e.kv.Set(ctx, Key(sessionID), string(raw), IdleTTL); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Add validates itemID against the catalog and merges it into the cart.
// An existing line for the same item only gains quantity; its stored
// special requests are kept. The write refreshes the idle TTL.
func (e *Engine) Add(ctx context.Context, sessionID, itemID string, quantity int, specialRequests string) (Summary, error) {
	if quantity < 1 {
		return Summary{}, ErrInvalidQuantity
	}

	item, err := e.catalog.Lookup(itemID)
	if err != nil {
		return Summary{}, err
	}

	lines, err := e.Lines(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrCartNotFound) {
			return Summary{}, err
		}
		lines = []Line{}
	}

	merged := false
	for i := range lines {
		if lines[i].ItemID == itemID {
			lines[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, Line{
			ItemID:          item.ID,
			Name:            item.Name,
			Price:           item.Price,
			Quantity:        quantity,
			SpecialRequests: specialRequests,
		})
	}

	if err := e.save(ctx, sessionID, lines); err != nil {
		return Summary{}, err
	}
	return Summarize(lines), nil
}

// Get returns the current cart summary. A missing cart is not an error;
// it reads as an empty summary.
func (e *Engine) Get(ctx context.Context, sessionID string) (Summary, error) {
	lines, err := e.Lines(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return Summarize(nil), nil
		}
		return Summary{}, err
	}
	return Summarize(lines), nil
}

// Remove drops itemID from the cart, failing with ErrCartNotFound when no
// cart exists. Removing the last line deletes the cart key outright, so a
// stored cart is always non-empty.
func (e *Engine) Remove(ctx context.Context, sessionID, itemID string) (Summary, error) {
	lines, err := e.Lines(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}

	kept := lines[:0]
	for _, l := range lines {
		if l.ItemID != itemID {
			kept = append(kept, l)
		}
	}

	if len(kept) == 0 {
		if err := e.kv.Del(ctx, Key(sessionID)); err != nil {
			return Summary{}, fmt.Errorf("delete cart: %w", err)
		}
		return Summarize(nil), nil
	}

	if err := e.save(ctx, sessionID, kept); err != nil {
		return Summary{}, err
	}
	return Summarize(kept), nil
}

// RemoveIfPresent is the idempotent variant of Remove: a session without a
// cart is a successful no-op.
func (e *Engine) RemoveIfPresent(ctx context.Context, sessionID, itemID string) (Summary, error) {
	summary, err := e.Remove(ctx, sessionID, itemID)
	if errors.Is(err, ErrCartNotFound) {
		return Summarize(nil), nil
	}
	return summary, err
}

// Clear deletes the cart key unconditionally.
func (e *Engine) Clear(ctx context.Context, sessionID string) error {
	return e.kv.Del(ctx, Key(sessionID))
}

package order

import (
	"fmt"
	"time"
)

// Item is one ordered line, projected from a cart line at checkout.
type Item struct {
	ItemID          string `json:"item_id"`
	Quantity        int    `json:"quantity"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// Order is the persisted record of a completed checkout. It is written
// exactly once and never mutated afterwards.
type Order struct {
	OrderID             string    `json:"order_id"`
	CustomerName        string    `json:"customer_name,omitempty"`
	CustomerPhone       string    `json:"customer_phone"`
	Items               []Item    `json:"items"`
	TotalAmount         float64   `json:"total_amount"`
	SpecialInstructions string    `json:"special_instructions,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// MintID composes an order id from the creation time and the trailing
// digits of the customer phone, e.g. order_1735689600_0000. Two checkouts
// from the same phone within the same second collide; that risk is
// accepted and deliberately not deduplicated.
func MintID(now time.Time, phone string) string {
	suffix := phone
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return fmt.Sprintf("order_%d_%s", now.Unix(), suffix)
}

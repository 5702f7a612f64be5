package httpapi

import "net/http"

func NewRouter(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Root)

	mux.HandleFunc("GET /menu", h.GetMenu)
	mux.HandleFunc("GET /menu/{category}", h.GetMenuCategory)

	mux.HandleFunc("POST /cart/add", h.AddToCart)
	mux.HandleFunc("POST /cart/remove", h.RemoveFromCartIdempotent)
	mux.HandleFunc("GET /cart/{session_id}", h.GetCart)
	mux.HandleFunc("DELETE /cart/{session_id}/item/{item_id}", h.RemoveFromCart)
	mux.HandleFunc("POST /cart/{session_id}/checkout", h.Checkout)

	mux.HandleFunc("POST /session/{session_id}/meta", h.SetSessionMeta)
	mux.HandleFunc("POST /voice/query", h.VoiceQuery)

	mux.HandleFunc("POST /orders", h.CreateOrder)
	mux.HandleFunc("GET /orders/{order_id}", h.GetOrder)

	return mux
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Payload is the flat field set the order-intake service expects. The
// field names are its contract and must not change.
type Payload struct {
	CustomerName  string  `json:"nombre_cliente"`
	Phone         string  `json:"telefono"`
	OrderType     string  `json:"tipo_de_pedido"`
	Dishes        string  `json:"platillos"`
	TotalPrice    float64 `json:"precio_total"`
	PaymentMethod string  `json:"metodo_pago,omitempty"`
	Notes         string  `json:"notas,omitempty"`
	Address       string  `json:"direccion_cliente,omitempty"`
	RestaurantID  string  `json:"id_restaurante"`
}

// Client posts order notifications to the external order-intake service.
// Delivery is best-effort; the caller decides what a failure means.
type Client struct {
	url  string
	http *http.Client
	log  *logrus.Logger
}

// dispatchTimeout bounds the whole outbound call. A slow intake service
// must not hold up checkout.
const dispatchTimeout = 3 * time.Second

func NewClient(url string, log *logrus.Logger) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: dispatchTimeout},
		log:  log,
	}
}

func (c *Client) Send(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build intake request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send order notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("order intake returned status %d", resp.StatusCode)
	}

	c.log.WithField("status", resp.StatusCode).Info("order notification delivered")
	return nil
}

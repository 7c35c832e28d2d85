// Package payment is the HTTP client for the external payment gateway. The
// core treats any status outside [200,300) or an undecodable body as a
// failed charge; the saga maps that to a payment failure, it is never
// retried here.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/OlegStrokan/free-ebay-sub000/internal/checkout"
)

// Client implements checkout.PaymentGateway over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a gateway client for the given base URL. The transport is
// traced; timeouts come from the caller's context, not from the client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// ProcessPayment posts the charge to the gateway. A transport error or
// context timeout is returned as err; a decoded response always comes back
// as a result, with Body nil when the payload was malformed.
func (c *Client) ProcessPayment(ctx context.Context, req checkout.GatewayRequest) (checkout.GatewayResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return checkout.GatewayResult{}, fmt.Errorf("payment: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/payments", bytes.NewReader(payload))
	if err != nil {
		return checkout.GatewayResult{}, fmt.Errorf("payment: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(httpReq)
	if err != nil {
		return checkout.GatewayResult{}, fmt.Errorf("payment: charge %s: %w", req.OrderID, err)
	}
	defer res.Body.Close()

	result := checkout.GatewayResult{StatusCode: res.StatusCode}

	var body checkout.GatewayBody
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil {
		result.Body = &body
	}
	return result, nil
}

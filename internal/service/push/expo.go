package push

import (
	"context"

	"CrossAlert/internal/domain/models"
	drepo "CrossAlert/internal/domain/repository"
	xhttp "CrossAlert/pkg/http"
)

// Client delivers notifications through the Expo push gateway. One POST per
// notification; no batching, retry, or backoff here. The gateway ack is not
// a delivery guarantee.
type Client struct {
	client *xhttp.Client
	url    string
}

func New(client *xhttp.Client, url string) *Client {
	return &Client{client: client, url: url}
}

type expoMessage struct {
	To         string                 `json:"to"`
	Sound      string                 `json:"sound"`
	Title      string                 `json:"title"`
	Body       string                 `json:"body"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Priority   string                 `json:"priority"`
	Badge      int                    `json:"badge"`
	CategoryID string                 `json:"categoryId"`
}

type expoReceipt struct {
	Data struct {
		Status  string `json:"status"`
		ID      string `json:"id"`
		Message string `json:"message"`
	} `json:"data"`
}

// Send delivers one notification. Any failure (transport error, malformed
// gateway response) becomes a failed DeliveryResult so one bad delivery
// never aborts the rest of a dispatch loop.
func (c *Client) Send(ctx context.Context, pushToken, title, body string, data map[string]interface{}) models.DeliveryResult {
	msg := expoMessage{
		To:         pushToken,
		Sound:      "default",
		Title:      title,
		Body:       body,
		Data:       data,
		Priority:   "high",
		Badge:      1,
		CategoryID: "signal",
	}

	var receipt expoReceipt
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.url,
		Headers: map[string]string{
			"Accept":       "application/json",
			"Content-Type": "application/json",
		},
		Body: msg,
	}, &receipt)
	if err != nil {
		return models.DeliveryResult{Delivered: false, Error: err.Error()}
	}

	if receipt.Data.Status == "error" {
		return models.DeliveryResult{Delivered: false, Status: receipt.Data.Status, Error: receipt.Data.Message}
	}
	return models.DeliveryResult{Delivered: true, Status: receipt.Data.Status}
}

var _ drepo.Notifier = (*Client)(nil)

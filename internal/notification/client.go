// Package notification delivers transactional email for order lifecycle
// changes through the mail-sender API.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"

	"github.com/bazaarlabs/orderhub/internal/domain"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type MailClient struct {
	http       *resty.Client
	maxRetries uint64
}

func NewMailClient(baseURL string, maxRetries uint64) *MailClient {
	return &MailClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		maxRetries: maxRetries,
	}
}

// Send posts one message to the sender API without retrying.
func (c *MailClient) Send(ctx context.Context, msg Message) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(msg).
		Post("/send")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("mail sender returned status %d: %s", resp.StatusCode(), resp.Body())
	}
	return nil
}

// SendWithRetry wraps Send in bounded exponential backoff. Transient sender
// outages are absorbed here instead of failing the whole event.
func (c *MailClient) SendWithRetry(ctx context.Context, msg Message) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries),
		ctx,
	)
	return backoff.Retry(func() error {
		return c.Send(ctx, msg)
	}, policy)
}

// Compose renders the status-change email for an event.
func Compose(event domain.OrderStatusChangedEvent) Message {
	var subject, body string
	switch event.To {
	case domain.OrderStatusPending:
		subject = fmt.Sprintf("Order %s received", event.OrderID)
		body = fmt.Sprintf("Hi %s, we have received your order %s and will confirm it shortly.", event.RecipientName, event.OrderID)
	case domain.OrderStatusConfirmed:
		subject = fmt.Sprintf("Order %s confirmed", event.OrderID)
		body = fmt.Sprintf("Hi %s, your order %s has been confirmed by the seller.", event.RecipientName, event.OrderID)
	case domain.OrderStatusPickedUp:
		subject = fmt.Sprintf("Order %s picked up", event.OrderID)
		body = fmt.Sprintf("Hi %s, the courier has collected your order %s from the seller.", event.RecipientName, event.OrderID)
	case domain.OrderStatusShipped:
		subject = fmt.Sprintf("Order %s shipped", event.OrderID)
		body = fmt.Sprintf("Hi %s, your order %s is on its way.", event.RecipientName, event.OrderID)
	case domain.OrderStatusDelivered:
		subject = fmt.Sprintf("Order %s delivered", event.OrderID)
		body = fmt.Sprintf("Hi %s, your order %s has been delivered. Enjoy!", event.RecipientName, event.OrderID)
	case domain.OrderStatusCancelled:
		subject = fmt.Sprintf("Order %s cancelled", event.OrderID)
		body = fmt.Sprintf("Hi %s, your order %s has been cancelled. Any payment will be refunded.", event.RecipientName, event.OrderID)
	case domain.OrderStatusReturned:
		subject = fmt.Sprintf("Order %s returned", event.OrderID)
		body = fmt.Sprintf("Hi %s, we have registered the return of your order %s.", event.RecipientName, event.OrderID)
	default:
		subject = fmt.Sprintf("Order %s updated", event.OrderID)
		body = fmt.Sprintf("Hi %s, your order %s is now %s.", event.RecipientName, event.OrderID, event.To)
	}

	return Message{
		To:      event.RecipientEmail,
		Subject: subject,
		Body:    body,
	}
}

package domain

import "time"

// TopicOrderStatusChanged carries every order lifecycle change, including
// the initial transition into pending at checkout (From is empty then).
const TopicOrderStatusChanged = "order.status-changed"

type OrderStatusChangedEvent struct {
	OrderID        string      `json:"order_id"`
	From           OrderStatus `json:"from,omitempty"`
	To             OrderStatus `json:"to"`
	RecipientName  string      `json:"recipient_name"`
	RecipientEmail string      `json:"recipient_email"`
	OccurredAt     time.Time   `json:"occurred_at"`
}

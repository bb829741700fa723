package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bazaarlabs/orderhub/internal/courier"
	"github.com/bazaarlabs/orderhub/internal/domain"
	"github.com/bazaarlabs/orderhub/internal/notification"
)

// Mailer is satisfied by notification.MailClient.
type Mailer interface {
	SendWithRetry(ctx context.Context, msg notification.Message) error
}

// PickupScheduler is satisfied by courier.Client.
type PickupScheduler interface {
	SchedulePickup(ctx context.Context, req courier.PickupRequest) (*courier.PickupConfirmation, error)
}

// OrdersAPI is satisfied by OrdersClient.
type OrdersAPI interface {
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	SetCourier(ctx context.Context, orderID string, courier domain.Courier) error
}

// NotificationHandler turns order.status-changed events into side effects:
// customer email for every transition, and courier scheduling plus tracking
// write-back when the order reaches picked_up.
type NotificationHandler struct {
	mail    Mailer
	courier PickupScheduler
	orders  OrdersAPI
	logger  *slog.Logger
}

func NewNotificationHandler(mail Mailer, scheduler PickupScheduler, orders OrdersAPI, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		mail:    mail,
		courier: scheduler,
		orders:  orders,
		logger:  logger,
	}
}

func (h *NotificationHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderStatusChangedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal status changed event: %w", err)
	}

	h.logger.Info("processing status change", "order_id", event.OrderID, "from", event.From, "to", event.To)

	// Email is best-effort after the retry budget: a dead sender must not
	// wedge the whole pipeline behind one message.
	if event.RecipientEmail != "" {
		msg := notification.Compose(event)
		if err := h.mail.SendWithRetry(ctx, msg); err != nil {
			h.logger.Error("giving up on status email", "error", err, "order_id", event.OrderID, "to", msg.To)
		}
	} else {
		h.logger.Warn("order has no recipient email", "order_id", event.OrderID)
	}

	if event.To == domain.OrderStatusPickedUp {
		if err := h.schedulePickup(ctx, event.OrderID); err != nil {
			// Returning the error leaves the offset uncommitted so the
			// pickup is retried on redelivery.
			h.logger.Error("failed to schedule courier pickup", "error", err, "order_id", event.OrderID)
			return fmt.Errorf("schedule pickup for order %s: %w", event.OrderID, err)
		}
	}

	return nil
}

func (h *NotificationHandler) schedulePickup(ctx context.Context, orderID string) error {
	order, err := h.orders.Get(ctx, orderID)
	if err != nil {
		return fmt.Errorf("fetch order: %w", err)
	}

	if order.Courier.TrackingID != "" {
		h.logger.Info("pickup already scheduled", "order_id", orderID, "tracking_id", order.Courier.TrackingID)
		return nil
	}

	confirmation, err := h.courier.SchedulePickup(ctx, courier.PickupRequest{
		OrderID: order.ID,
		Contact: order.Address.Name,
		Phone:   order.Address.Phone,
		Address: order.Address,
	})
	if err != nil {
		return fmt.Errorf("courier API: %w", err)
	}

	if err := h.orders.SetCourier(ctx, orderID, domain.Courier{
		Name:        confirmation.Courier,
		TrackingID:  confirmation.TrackingID,
		TrackingURL: confirmation.TrackingURL,
	}); err != nil {
		return fmt.Errorf("write back courier details: %w", err)
	}

	h.logger.Info("courier pickup scheduled", "order_id", orderID, "courier", confirmation.Courier, "tracking_id", confirmation.TrackingID)
	return nil
}

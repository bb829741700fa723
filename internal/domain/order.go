package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPickedUp  OrderStatus = "picked_up"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusReturned  OrderStatus = "returned"
)

// statusTransitions is the full lifecycle graph. Cancellation is only
// reachable before the parcel leaves the seller; a return requires delivery.
var statusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusPickedUp, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPickedUp, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusPickedUp:  {OrderStatusShipped},
	OrderStatusShipped:   {OrderStatusDelivered},
	OrderStatusDelivered: {OrderStatusReturned},
	OrderStatusCancelled: {},
	OrderStatusReturned:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, next := range statusTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// PickupClosed reports whether a courier pickup already happened or the
// order has progressed past that point.
func (s OrderStatus) PickupClosed() bool {
	switch s {
	case OrderStatusPickedUp, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "COD"
	PaymentMethodPrepaid PaymentMethod = "PREPAID"
)

type OrderItem struct {
	ProductID string `json:"product_id"`
	StoreID   string `json:"store_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

type Address struct {
	Name    string `json:"name"`
	Street  string `json:"street"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

type Courier struct {
	Name        string `json:"name,omitempty"`
	TrackingID  string `json:"tracking_id,omitempty"`
	TrackingURL string `json:"tracking_url,omitempty"`
}

// Order is the persisted purchase record. Items, address, and amounts are
// snapshots taken at checkout; later product or address edits never change
// a historical order. UserID is nil for guest checkouts, in which case the
// customer contact fields are the only link to the buyer.
type Order struct {
	ID            string        `json:"id"`
	UserID        *string       `json:"user_id,omitempty"`
	CustomerName  string        `json:"customer_name"`
	CustomerEmail string        `json:"customer_email"`
	CustomerPhone string        `json:"customer_phone"`
	Address       Address       `json:"address"`
	Items         []OrderItem   `json:"items"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Subtotal      int64         `json:"subtotal"`
	ShippingFee   int64         `json:"shipping_fee"`
	Total         int64         `json:"total"`
	Status        OrderStatus   `json:"status"`
	Courier       Courier       `json:"courier"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func (o *Order) Guest() bool {
	return o.UserID == nil
}

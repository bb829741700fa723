package orders

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/bazaarlabs/orderhub/internal/domain"
	"github.com/bazaarlabs/orderhub/internal/shipping"
)

// OrderStore is the persistence boundary of the order lifecycle. The
// postgres OrderRepository implements it; tests use an in-memory fake.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) (bool, error)
	SetCourier(ctx context.Context, id string, courier domain.Courier, at time.Time) (bool, error)
}

// ConfigSource resolves a store's shipping configuration. A nil config with
// a nil error means the store has not set one up, which quotes to zero.
type ConfigSource interface {
	ShippingConfig(ctx context.Context, storeID string) (*domain.ShippingConfig, error)
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Service struct {
	store     OrderStore
	configs   ConfigSource
	publisher Publisher
	logger    *slog.Logger
}

// NewService wires the order lifecycle. publisher may be nil, in which case
// status changes are not announced (used in tests and local setups without
// a broker).
func NewService(store OrderStore, configs ConfigSource, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		configs:   configs,
		publisher: publisher,
		logger:    logger,
	}
}

type CreateRequest struct {
	UserID        *string              `json:"user_id,omitempty"`
	Name          string               `json:"name"`
	Email         string               `json:"email"`
	Phone         string               `json:"phone"`
	Street        string               `json:"address"`
	State         string               `json:"state"`
	Pincode       string               `json:"pincode"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Items         []domain.OrderItem   `json:"items"`
}

func (req *CreateRequest) validate() error {
	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(req.Phone) == "" {
		missing = append(missing, "phone")
	}
	if strings.TrimSpace(req.Street) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(req.State) == "" {
		missing = append(missing, "state")
	}
	if strings.TrimSpace(req.Pincode) == "" {
		missing = append(missing, "pincode")
	}
	if len(req.Items) == 0 || invalidItems(req.Items) {
		missing = append(missing, "items")
	}
	if len(missing) > 0 {
		return &domain.ValidationError{Fields: missing}
	}
	return nil
}

// invalidItems applies the same line-item sanity to checkout and quoting.
func invalidItems(items []domain.OrderItem) bool {
	for _, item := range items {
		if item.ProductID == "" || item.StoreID == "" || item.Quantity <= 0 || item.UnitPrice < 0 {
			return true
		}
	}
	return false
}

// Create runs checkout: validate, snapshot the cart, price shipping with
// the same calculator the quote endpoint uses, persist, announce.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	method := req.PaymentMethod
	if method == "" {
		method = domain.PaymentMethodPrepaid
	}

	fee, err := s.shippingFee(ctx, req.Items, method)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	subtotal := shipping.Subtotal(req.Items)
	order := &domain.Order{
		UserID:        req.UserID,
		CustomerName:  req.Name,
		CustomerEmail: req.Email,
		CustomerPhone: req.Phone,
		Address: domain.Address{
			Name:    req.Name,
			Street:  req.Street,
			State:   req.State,
			Pincode: req.Pincode,
			Phone:   req.Phone,
		},
		Items:         req.Items,
		PaymentMethod: method,
		Subtotal:      subtotal,
		ShippingFee:   fee,
		Total:         subtotal + fee,
		Status:        domain.OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Create(ctx, order); err != nil {
		return nil, err
	}

	s.announce(ctx, order, "", domain.OrderStatusPending)

	return order, nil
}

// shippingFee prices the cart one store group at a time, so multi-store
// carts pay each seller's configured fee.
func (s *Service) shippingFee(ctx context.Context, items []domain.OrderItem, method domain.PaymentMethod) (int64, error) {
	groups := make(map[string][]domain.OrderItem)
	var storeIDs []string
	for _, item := range items {
		if _, seen := groups[item.StoreID]; !seen {
			storeIDs = append(storeIDs, item.StoreID)
		}
		groups[item.StoreID] = append(groups[item.StoreID], item)
	}

	var fee int64
	for _, storeID := range storeIDs {
		cfg, err := s.configs.ShippingConfig(ctx, storeID)
		if err != nil {
			return 0, err
		}
		fee += shipping.Quote(groups[storeID], cfg, method)
	}
	return fee, nil
}

// Quote prices a prospective cart for a single store. It is the read-only
// twin of the fee computation inside Create.
func (s *Service) Quote(ctx context.Context, items []domain.OrderItem, method domain.PaymentMethod) (int64, error) {
	if invalidItems(items) {
		return 0, &domain.ValidationError{Fields: []string{"items"}}
	}
	if method == "" {
		method = domain.PaymentMethodPrepaid
	}
	return s.shippingFee(ctx, items, method)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]domain.Order, error) {
	return s.store.List(ctx, filter)
}

// UpdateStatus applies a lifecycle transition. Illegal moves are rejected
// against the transition table, and the write itself is a compare-and-swap
// so a concurrent transition surfaces as a conflict instead of a lost
// update.
func (s *Service) UpdateStatus(ctx context.Context, id string, to domain.OrderStatus) (*domain.Order, error) {
	if !to.Valid() {
		return nil, &domain.ValidationError{Fields: []string{"status"}}
	}

	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	if !order.Status.CanTransitionTo(to) {
		return nil, &domain.InvalidTransitionError{From: order.Status, To: to}
	}

	return s.transition(ctx, order, to)
}

// RequestPickup marks the order as collected by the courier. The guard is
// idempotent: once the parcel is picked up or further along, a second
// request is rejected and the order is left untouched.
func (s *Service) RequestPickup(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	if order.Status.PickupClosed() || !order.Status.CanTransitionTo(domain.OrderStatusPickedUp) {
		return nil, &domain.PickupUnavailableError{Status: order.Status}
	}

	return s.transition(ctx, order, domain.OrderStatusPickedUp)
}

func (s *Service) transition(ctx context.Context, order *domain.Order, to domain.OrderStatus) (*domain.Order, error) {
	now := time.Now().UTC()
	from := order.Status

	ok, err := s.store.UpdateStatus(ctx, order.ID, from, to, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the CAS race; report against the current state.
		current, err := s.store.GetByID(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, domain.ErrOrderNotFound
		}
		if to == domain.OrderStatusPickedUp && current.Status.PickupClosed() {
			return nil, &domain.PickupUnavailableError{Status: current.Status}
		}
		return nil, &domain.InvalidTransitionError{From: current.Status, To: to}
	}

	order.Status = to
	order.UpdatedAt = now

	s.announce(ctx, order, from, to)

	return order, nil
}

func (s *Service) SetCourier(ctx context.Context, id string, courier domain.Courier) (*domain.Order, error) {
	ok, err := s.store.SetCourier(ctx, id, courier, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return s.Get(ctx, id)
}

// announce publishes a status-changed event. Delivery is best-effort here;
// the notification worker owns retries, so a broker hiccup never fails the
// order mutation itself.
func (s *Service) announce(ctx context.Context, order *domain.Order, from, to domain.OrderStatus) {
	if s.publisher == nil {
		return
	}

	event := domain.OrderStatusChangedEvent{
		OrderID:        order.ID,
		From:           from,
		To:             to,
		RecipientName:  order.CustomerName,
		RecipientEmail: order.CustomerEmail,
		OccurredAt:     order.UpdatedAt,
	}
	if err := s.publisher.Publish(ctx, order.ID, event); err != nil {
		s.logger.Error("failed to publish status change", "error", err, "order_id", order.ID, "to", to)
	}
}

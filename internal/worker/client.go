package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bazaarlabs/orderhub/internal/domain"
)

// OrdersClient is the worker's view of the orders API, authenticated with a
// service token.
type OrdersClient struct {
	http *resty.Client
}

func NewOrdersClient(baseURL, serviceToken string) *OrdersClient {
	return &OrdersClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Content-Type", "application/json").
			SetAuthToken(serviceToken),
	}
}

func (c *OrdersClient) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&order).
		Get("/orders/" + orderID)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == 404 {
		return nil, domain.ErrOrderNotFound
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("orders API returned status %d: %s", resp.StatusCode(), resp.Body())
	}
	return &order, nil
}

func (c *OrdersClient) SetCourier(ctx context.Context, orderID string, courier domain.Courier) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"courier":      courier.Name,
			"tracking_id":  courier.TrackingID,
			"tracking_url": courier.TrackingURL,
		}).
		Patch("/orders/" + orderID + "/courier")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("orders API returned status %d: %s", resp.StatusCode(), resp.Body())
	}
	return nil
}

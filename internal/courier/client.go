// Package courier talks to the logistics partner's pickup-scheduling API.
package courier

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/bazaarlabs/orderhub/internal/domain"
)

type Client struct {
	http *resty.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json").
			SetAuthToken(apiKey),
	}
}

type PickupRequest struct {
	OrderID string         `json:"order_id"`
	Contact string         `json:"contact_name"`
	Phone   string         `json:"contact_phone"`
	Address domain.Address `json:"address"`
}

type PickupConfirmation struct {
	Courier     string `json:"courier"`
	TrackingID  string `json:"tracking_id"`
	TrackingURL string `json:"tracking_url"`
}

// SchedulePickup books a courier collection and returns the assigned
// tracking details.
func (c *Client) SchedulePickup(ctx context.Context, req PickupRequest) (*PickupConfirmation, error) {
	var confirmation PickupConfirmation
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&confirmation).
		Post("/pickups")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 && resp.StatusCode() != 201 {
		return nil, fmt.Errorf("courier API returned status %d: %s", resp.StatusCode(), resp.Body())
	}
	if confirmation.TrackingID == "" {
		return nil, fmt.Errorf("courier API response missing tracking id")
	}
	return &confirmation, nil
}

package fareapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/oapi-codegen/nullable"

	"github.com/railquote/fare-estimator-api/internal/domain"
	"github.com/railquote/fare-estimator-api/internal/platform/config"
	"github.com/railquote/fare-estimator-api/internal/ports/out/fareprovider"
)

const pricePath = "/api/train/estimate/price"

// Client fetches base fares from the remote quoting service.
// It implements fareprovider.Provider.
type Client struct {
	cfg    config.FareAPIConfig
	client *http.Client
}

func New(cfg config.FareAPIConfig) *Client {
	return NewWithHTTPClient(cfg, nil)
}

func NewWithHTTPClient(cfg config.FareAPIConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Client{cfg: cfg, client: httpClient}
}

type priceResponse struct {
	Price nullable.Nullable[float64] `json:"price"`
}

// FetchBaseFare asks the quoting service for the trip's price.
//
// A response without a positive price yields fareprovider.Unavailable and no error;
// transport and decoding problems yield fareprovider.Unavailable and the error.
func (c *Client) FetchBaseFare(ctx context.Context, trip domain.TripDetails) (float64, error) {
	q := url.Values{}
	q.Set("from", trip.Origin)
	q.Set("to", trip.Destination)
	q.Set("date", trip.TravelDate.Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+pricePath+"?"+q.Encode(), nil)
	if err != nil {
		return fareprovider.Unavailable, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fareprovider.Unavailable, fmt.Errorf("fare api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fareprovider.Unavailable, fmt.Errorf("fare api request failed: status=%d", resp.StatusCode)
	}

	var body priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fareprovider.Unavailable, fmt.Errorf("fare api decode: %w", err)
	}
	price, err := body.Price.Get()
	if err != nil || price <= 0 {
		return fareprovider.Unavailable, nil
	}
	return price, nil
}

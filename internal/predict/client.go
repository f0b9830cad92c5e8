package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aibeh/order-management/pkg/models"
)

// Client fetches the latest-order feature payload from a running order
// service. Any non-success response is terminal for the run; there are no
// retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) LatestOrderFeatures(ctx context.Context) (*models.OrderFeatures, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders/last", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("no orders exist yet, or the latest order has a stale reference")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("order service returned status %d", resp.StatusCode)
	}

	var features models.OrderFeatures
	if err := json.NewDecoder(resp.Body).Decode(&features); err != nil {
		return nil, fmt.Errorf("decode latest order response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"order_id": features.Order.ID,
		"country":  features.Country,
		"category": features.Category,
	}).Info("Fetched latest order features")
	return &features, nil
}

// SampleFromFeatures maps the service payload onto a model input.
func SampleFromFeatures(f *models.OrderFeatures) Sample {
	return Sample{
		Country:    f.Country,
		State:      f.State,
		PostalCode: float64(f.PostalCode),
		Category:   f.Category,
	}
}

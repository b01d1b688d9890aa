package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ashharzawarsyed/alertx-sub001/module/tracking/domain"
)

// Client talks to the external EMS dispatch REST API. Only the arrival
// report is needed here; record CRUD stays with the dispatch service.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *Client) ReportArrival(ctx context.Context, report *domain.ArrivalReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal arrival report: %w", err)
	}

	url := c.baseURL + "/api/v1/ambulances/" + report.AmbulanceID + "/arrival"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build arrival request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send arrival report: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("dispatch api: unexpected status %d", resp.StatusCode)
	}
	return nil
}

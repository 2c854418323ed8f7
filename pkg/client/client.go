package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/devrewind/github-rewind/internal/domain"
	"github.com/devrewind/github-rewind/internal/slides"
)

// Client is the API client for github-rewind
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new API client. token is an optional GitHub
// credential forwarded on every request.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 180 * time.Second,
		},
	}
}

// GetWrapped retrieves the yearly snapshot for a user
func (c *Client) GetWrapped(username string, year int) (*domain.YearlySnapshot, error) {
	path := fmt.Sprintf("/api/v1/wrapped/%s/%d", username, year)

	var response struct {
		Data *domain.YearlySnapshot `json:"data"`
	}
	if err := c.get(path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// WrappedReport pairs a snapshot with its generated slide deck
type WrappedReport struct {
	Snapshot *domain.YearlySnapshot `json:"snapshot"`
	Slides   []slides.Slide         `json:"slides"`
	ReportID string                 `json:"report_id"`
}

// GetWrappedSlides retrieves the snapshot plus the generated slides.
// save=true asks the server to record the report in its history.
func (c *Client) GetWrappedSlides(username string, year int, save bool) (*WrappedReport, error) {
	path := fmt.Sprintf("/api/v1/wrapped/%s/%d/slides", username, year)
	params := url.Values{}
	if save {
		params.Set("save", "true")
	}

	var response struct {
		Data *WrappedReport `json:"data"`
	}
	if err := c.get(path, params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// ListReports lists saved reports, optionally filtered by username
func (c *Client) ListReports(username string, limit int) ([]*domain.Report, error) {
	params := url.Values{}
	if username != "" {
		params.Set("username", username)
	}
	if limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", limit))
	}

	var response struct {
		Data []*domain.Report `json:"data"`
	}
	if err := c.get("/api/v1/reports", params, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// GetReport retrieves one saved report by ID
func (c *Client) GetReport(id string) (*domain.Report, error) {
	var response struct {
		Data *domain.Report `json:"data"`
	}
	if err := c.get("/api/v1/reports/"+id, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get("/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) get(path string, params url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s - %s", resp.Status, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

package slides

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/devrewind/github-rewind/internal/domain"
)

// Slide is one screen of the generated deck
type Slide struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Generator turns a snapshot into an ordered slide deck
type Generator interface {
	Generate(ctx context.Context, snapshot *domain.YearlySnapshot) ([]Slide, error)
}

// Client calls the slide-generation service over HTTP. The service wraps an
// LLM and is consumed as a black box: snapshot in, slides out. Generation
// can take a while, hence the generous default timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a slide service client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type generateRequest struct {
	Username string                 `json:"username"`
	Year     int                    `json:"year"`
	Snapshot *domain.YearlySnapshot `json:"snapshot"`
}

// Generate posts the snapshot and returns the ordered slides
func (c *Client) Generate(ctx context.Context, snapshot *domain.YearlySnapshot) ([]Slide, error) {
	body, err := json.Marshal(generateRequest{
		Username: snapshot.User.Login,
		Year:     snapshot.Year,
		Snapshot: snapshot,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/slides", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("slide service error: %s - %s", resp.Status, string(msg))
	}

	var response struct {
		Slides []Slide `json:"slides"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}
	return response.Slides, nil
}

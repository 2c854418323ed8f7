package domain

import "time"

// Repository represents a GitHub repository as seen during one aggregation
// pass. Fetched fresh per request, never cached across requests.
type Repository struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Owner       string    `json:"owner"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	IsPrivate   bool      `json:"private"`
	IsFork      bool      `json:"fork"`
	Language    string    `json:"language,omitempty"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PushedAt    time.Time `json:"pushed_at"`
}

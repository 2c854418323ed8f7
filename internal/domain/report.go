package domain

import (
	"encoding/json"
	"time"
)

// Report is one finished wrapped report kept in the optional history store.
// Snapshot and Slides are stored as raw JSON so the history schema does not
// chase the snapshot shape.
type Report struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Year      int             `json:"year"`
	Snapshot  json.RawMessage `json:"snapshot"`
	Slides    json.RawMessage `json:"slides,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

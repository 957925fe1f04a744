package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ScoreRequest is the body of POST /scores.
type ScoreRequest struct {
	Name       string `json:"name"`
	Seconds    int    `json:"seconds"`
	Moves      int    `json:"moves"`
	Difficulty string `json:"difficulty"`
}

// ScoreRecord mirrors a stored score as returned by the API.
type ScoreRecord struct {
	ID         string    `json:"id,omitempty"`
	Name       string    `json:"name"`
	Seconds    int       `json:"seconds"`
	Moves      int       `json:"moves"`
	Difficulty string    `json:"difficulty"`
	CreatedAt  time.Time `json:"created_at"`
}

// HealthStatus describes the /healthz response.
type HealthStatus struct {
	Status string                 `json:"status"`
	Checks map[string]interface{} `json:"checks"`
}

// Stats describes the /stats response.
type Stats struct {
	Submissions  map[string]int64 `json:"submissions"`
	BestSeconds  map[string]int   `json:"best_seconds"`
	PlayersToday int              `json:"players_today"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed: status %d", e.Status)
	}
	return fmt.Sprintf("request failed: status %d: %s", e.Status, e.Message)
}

func decodeJSON(resp *http.Response, target any) error {
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// ErrEmptyName is returned when the player name is empty.
var ErrEmptyName = errors.New("player name is required")

package model

import "time"

// AlertState records which notifications were already sent, keyed by signal identity.
type AlertState struct {
	Sent      map[string]string `json:"sent"` // key -> day (YYYY-MM-DD)
	UpdatedAt time.Time         `json:"updated_at"`
}

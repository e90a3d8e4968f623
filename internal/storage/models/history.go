package models

import "time"

// HistoryItem is one recently used URL. The history list is capped at the 20
// most recently used unique URLs, most recent first.
type HistoryItem struct {
	URL      string    `json:"url"`
	LastUsed time.Time `json:"last_used"`
}

package domain

import "time"

// IngestEvent announces that a manifest's records were merged with fresh
// asset-source data.
type IngestEvent struct {
	Type       string    `json:"type"`
	CustomerID int       `json:"customerId"`
	ManifestID string    `json:"manifestId"`
	Timestamp  time.Time `json:"timestamp"`
}

// EventTypeIngestComplete is published after a successful merge.
const EventTypeIngestComplete = "ingest.complete"

package models

import (
	"time"

	"github.com/lib/pq"
)

// ManifestDocument stores both halves of a manifest's round trip: the
// document as submitted and the merged document currently served.
type ManifestDocument struct {
	ManifestID string `json:"manifestId" gorm:"primaryKey;type:text"`
	CustomerID int    `json:"customerId" gorm:"primaryKey"`
	Submitted  string `json:"submitted" gorm:"type:jsonb"`
	Served     string `json:"served" gorm:"type:jsonb"`
	// SavedContexts keeps non-default @context entries observed on the
	// asset source, for diagnostics.
	SavedContexts pq.StringArray `json:"savedContexts" gorm:"type:text[]"`
	// ETag is the content tag of the served document.
	ETag  string    `json:"etag" gorm:"type:text"`
	CDate time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate time.Time `json:"mdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

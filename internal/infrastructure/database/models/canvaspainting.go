package models

import (
	"time"
)

// CanvasPainting is the persisted row for one painted resource. Label and
// CanvasLabel hold the serialized language maps; AssetID holds the canonical
// customer/space/asset form.
type CanvasPainting struct {
	ID               int64     `json:"-" gorm:"primaryKey;autoIncrement"`
	CanvasID         string    `json:"canvasId" gorm:"type:text;index:idx_canvas_paintings_canvas_id,priority:2"`
	ManifestID       string    `json:"manifestId" gorm:"type:text;index"`
	CustomerID       int       `json:"customerId" gorm:"index:idx_canvas_paintings_canvas_id,priority:1"`
	CanvasOriginalID string    `json:"canvasOriginalId" gorm:"type:text"`
	CanvasOrder      int       `json:"canvasOrder"`
	ChoiceOrder      *int      `json:"choiceOrder"`
	Label            string    `json:"label" gorm:"type:jsonb"`
	CanvasLabel      string    `json:"canvasLabel" gorm:"type:jsonb"`
	Target           string    `json:"target" gorm:"type:text"`
	StaticWidth      *int      `json:"staticWidth"`
	StaticHeight     *int      `json:"staticHeight"`
	Thumbnail        string    `json:"thumbnail" gorm:"type:text"`
	Duration         *float64  `json:"duration"`
	AssetID          string    `json:"assetId" gorm:"type:text;index"`
	Ingesting        bool      `json:"ingesting"`
	Modified         time.Time `json:"modified" gorm:"type:timestamp with time zone"`
	CDate            time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

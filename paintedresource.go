package iiif

import (
	"encoding/json"
	"fmt"
)

// PaintedResource is one entry of the painted-resources submission: an asset
// payload destined for the ingestion backend, plus optional painting hints.
type PaintedResource struct {
	Asset          json.RawMessage     `json:"asset"`
	CanvasPainting *CanvasPaintingHint `json:"canvasPainting,omitempty"`
}

// CanvasPaintingHint carries explicit painting instructions for one asset.
type CanvasPaintingHint struct {
	CanvasID         string      `json:"canvasId,omitempty"`
	CanvasOrder      *int        `json:"canvasOrder,omitempty"`
	ChoiceOrder      *int        `json:"choiceOrder,omitempty"`
	Label            LanguageMap `json:"label,omitempty"`
	CanvasLabel      LanguageMap `json:"canvasLabel,omitempty"`
	StaticWidth      *int        `json:"staticWidth,omitempty"`
	StaticHeight     *int        `json:"staticHeight,omitempty"`
	Target           string      `json:"target,omitempty"`
	CanvasOriginalID string      `json:"canvasOriginalId,omitempty"`
	Thumbnail        string      `json:"thumbnail,omitempty"`
	Duration         *float64    `json:"duration,omitempty"`
	Ingesting        *bool       `json:"ingesting,omitempty"`
}

// AssetRef extracts the content identifier and optional space from the asset
// payload. A missing id is an error; a missing space defers to the second
// assignment phase.
func (pr PaintedResource) AssetRef() (id string, space int, err error) {
	if len(pr.Asset) == 0 {
		return "", 0, fmt.Errorf("painted resource has no asset")
	}
	var ref struct {
		ID    string `json:"id"`
		Space *int   `json:"space"`
	}
	if err := json.Unmarshal(pr.Asset, &ref); err != nil {
		return "", 0, fmt.Errorf("invalid asset payload: %w", err)
	}
	if ref.ID == "" {
		return "", 0, fmt.Errorf("asset payload has no id")
	}
	if ref.Space == nil {
		return ref.ID, SpaceUnset, nil
	}
	return ref.ID, *ref.Space, nil
}

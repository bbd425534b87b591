package domain

import (
	"sort"
	"strconv"
	"time"

	"github.com/dlcs/iiif-presentation-sub002"
)

// CanvasPainting is the flat, persisted representation of one painted
// content resource on a canvas. Several records may share one canvas id:
// either as alternatives of a Choice (distinct choice orders) or as separate
// paintings on the same surface.
type CanvasPainting struct {
	// ID is the canvas identifier, shared by all records of one canvas.
	// Empty until assigned by the id generator.
	ID         string
	ManifestID string
	CustomerID int

	// CanvasOriginalID points at an externally managed canvas when the
	// painting was submitted as raw IIIF items rather than an asset.
	CanvasOriginalID string

	// CanvasOrder is 0-based and monotonic across the manifest. ChoiceOrder
	// is 1-based and present only when the record is one alternative of a
	// Choice; nil means the record paints the canvas directly.
	CanvasOrder int
	ChoiceOrder *int

	Label iiif.LanguageMap
	// CanvasLabel is set only when the canvas's own label differs from the
	// record's resolved label, on the first such record of the canvas.
	CanvasLabel iiif.LanguageMap

	// Target is empty for the whole canvas, otherwise a serialized selector
	// or a sub-canvas identifier.
	Target string

	// StaticWidth/StaticHeight force the painted body to an explicit size
	// during merge, overriding whatever the asset source reports.
	StaticWidth  *int
	StaticHeight *int

	Thumbnail string
	Duration  *float64

	// AssetID references externally managed content. Records painting from
	// another manifest's canvas carry CanvasOriginalID instead and no asset.
	AssetID *iiif.AssetID

	// Ingesting stays true until the asset source confirms completion.
	Ingesting bool
	Modified  time.Time
}

// GroupKey derives the canvas grouping key: explicit id first, then the
// original canvas, then the canvas order alone for new records.
func (cp CanvasPainting) GroupKey() string {
	if cp.ID != "" {
		return "id:" + cp.ID
	}
	if cp.CanvasOriginalID != "" {
		return "original:" + cp.CanvasOriginalID
	}
	return "order:" + strconv.Itoa(cp.CanvasOrder)
}

// ChoiceRank is the sorting rank of the choice order, with direct paintings
// ranking before any choice member.
func (cp CanvasPainting) ChoiceRank() int {
	if cp.ChoiceOrder == nil {
		return 0
	}
	return *cp.ChoiceOrder
}

// SortPaintings orders records by (canvasOrder, choiceOrder) in place,
// keeping input order for ties.
func SortPaintings(paintings []CanvasPainting) {
	sort.SliceStable(paintings, func(i, j int) bool {
		if paintings[i].CanvasOrder != paintings[j].CanvasOrder {
			return paintings[i].CanvasOrder < paintings[j].CanvasOrder
		}
		return paintings[i].ChoiceRank() < paintings[j].ChoiceRank()
	})
}

// ValidateOrdering enforces the choice-order invariant: records sharing one
// canvas order are either a single direct painting or a full set of
// distinct choice members.
func ValidateOrdering(paintings []CanvasPainting) error {
	type orderGroup struct {
		direct  int
		choices map[int]bool
	}
	groups := map[int]*orderGroup{}
	for _, cp := range paintings {
		g, ok := groups[cp.CanvasOrder]
		if !ok {
			g = &orderGroup{choices: map[int]bool{}}
			groups[cp.CanvasOrder] = g
		}
		if cp.ChoiceOrder == nil {
			g.direct++
			continue
		}
		if g.choices[*cp.ChoiceOrder] {
			return OrderingError{
				CanvasOrder: cp.CanvasOrder,
				Reason:      "duplicate choice order " + strconv.Itoa(*cp.ChoiceOrder),
			}
		}
		g.choices[*cp.ChoiceOrder] = true
	}
	for order, g := range groups {
		if g.direct > 0 && len(g.choices) > 0 {
			return OrderingError{CanvasOrder: order, Reason: "mixes choice and non-choice records"}
		}
		if g.direct > 1 {
			return OrderingError{CanvasOrder: order, Reason: "multiple non-choice records"}
		}
	}
	return nil
}

package usecase

import (
	"context"
	"fmt"

	"github.com/dlcs/iiif-presentation-sub002"
	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
)

// PaintedResourceDecomposer turns a painted-resources submission into flat
// records, validating canvas ids against the customer's other manifests.
type PaintedResourceDecomposer struct {
	repo CanvasPaintingRepository
}

func NewPaintedResourceDecomposer(repo CanvasPaintingRepository) *PaintedResourceDecomposer {
	return &PaintedResourceDecomposer{repo: repo}
}

// PaintedResourceResult is the decomposition outcome. ImplicitOrder records
// that at least one canvas order was defaulted from list position, for
// downstream diagnostics.
type PaintedResourceResult struct {
	Paintings     []domain.CanvasPainting
	ImplicitOrder bool
}

// Decompose emits one record per painted resource. Canvas orders default to
// positional index when not supplied; explicit canvas ids must be path-safe
// and not in use by another manifest of the same customer.
func (d *PaintedResourceDecomposer) Decompose(ctx context.Context, customerID int, manifestID string, resources []iiif.PaintedResource) (*PaintedResourceResult, error) {
	result := &PaintedResourceResult{}

	for i, pr := range resources {
		assetName, space, err := pr.AssetRef()
		if err != nil {
			return nil, domain.ValidationError{
				Field:  fmt.Sprintf("paintedResources[%d].asset", i),
				Reason: err.Error(),
			}
		}

		cp := domain.CanvasPainting{
			ManifestID:  manifestID,
			CustomerID:  customerID,
			CanvasOrder: i,
			Ingesting:   true,
			AssetID: &iiif.AssetID{
				Customer: customerID,
				Space:    space,
				Asset:    assetName,
			},
		}

		hint := pr.CanvasPainting
		if hint == nil || hint.CanvasOrder == nil {
			result.ImplicitOrder = true
		}
		if hint != nil {
			if hint.CanvasID != "" {
				if !iiif.ValidCanvasID(hint.CanvasID) {
					return nil, domain.ValidationError{
						Field:  hint.CanvasID,
						Reason: "canvas id contains prohibited characters",
					}
				}
				cp.ID = hint.CanvasID
			}
			if hint.CanvasOrder != nil {
				cp.CanvasOrder = *hint.CanvasOrder
			}
			cp.ChoiceOrder = copyInt(hint.ChoiceOrder)
			cp.Label = hint.Label
			cp.CanvasLabel = hint.CanvasLabel
			cp.Target = hint.Target
			cp.Thumbnail = hint.Thumbnail
			cp.Duration = copyFloat(hint.Duration)
			cp.StaticWidth = copyInt(hint.StaticWidth)
			cp.StaticHeight = copyInt(hint.StaticHeight)
			if hint.Ingesting != nil {
				cp.Ingesting = *hint.Ingesting
			}
			if hint.CanvasOriginalID != "" {
				// Painted from another manifest's canvas; no asset backs it.
				cp.CanvasOriginalID = hint.CanvasOriginalID
				cp.AssetID = nil
			}
		}

		if cp.ID != "" {
			inUse, err := d.repo.CanvasIDInUse(ctx, customerID, cp.ID, manifestID)
			if err != nil {
				return nil, err
			}
			if inUse {
				return nil, domain.ValidationError{
					Field:  cp.ID,
					Reason: "canvas id already used by another manifest",
				}
			}
		}

		result.Paintings = append(result.Paintings, cp)
	}

	if err := domain.ValidateOrdering(result.Paintings); err != nil {
		return nil, err
	}
	return result, nil
}

// ResolveSpaces is the second phase of asset identity: records whose asset
// space was deferred take the now-known space.
func ResolveSpaces(paintings []domain.CanvasPainting, space int) {
	for i := range paintings {
		if paintings[i].AssetID != nil && !paintings[i].AssetID.HasSpace() {
			paintings[i].AssetID.Space = space
		}
	}
}

package usecase

import (
	"context"
	"errors"

	"github.com/dlcs/iiif-presentation-sub002"
	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
)

// ManifestUsecase orchestrates the two halves of the round trip: writes
// decompose a submitted document into records, ingest completion merges the
// records back into the served document.
type ManifestUsecase struct {
	paintings CanvasPaintingRepository
	manifests ManifestStore
	ids       CanvasIDGenerator
	paths     PathGenerator
	painted   *PaintedResourceDecomposer
	merger    *Merger
	source    AssetSourceGateway
}

func NewManifestUsecase(
	paintings CanvasPaintingRepository,
	manifests ManifestStore,
	ids CanvasIDGenerator,
	paths PathGenerator,
	merger *Merger,
	source AssetSourceGateway,
) *ManifestUsecase {
	return &ManifestUsecase{
		paintings: paintings,
		manifests: manifests,
		ids:       ids,
		paths:     paths,
		painted:   NewPaintedResourceDecomposer(paintings),
		merger:    merger,
		source:    source,
	}
}

// WriteManifest decomposes a submitted manifest into records, assigns canvas
// ids and persists both.
func (uc *ManifestUsecase) WriteManifest(ctx context.Context, customerID int, manifestID string, m *iiif.Manifest) ([]domain.CanvasPainting, error) {
	paintings, err := DecomposeManifest(customerID, manifestID, m)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateOrdering(paintings); err != nil {
		return nil, err
	}
	if err := uc.assignCanvasIDs(ctx, customerID, paintings); err != nil {
		return nil, err
	}
	if err := uc.paintings.ReplaceForManifest(ctx, customerID, manifestID, paintings); err != nil {
		return nil, err
	}
	if err := uc.manifests.PutSubmitted(ctx, customerID, manifestID, m); err != nil {
		return nil, err
	}
	return paintings, nil
}

// WritePaintedResources accepts the asset-based authoring shape: a list of
// assets plus optional painting hints instead of raw IIIF items.
func (uc *ManifestUsecase) WritePaintedResources(ctx context.Context, customerID int, manifestID string, resources []iiif.PaintedResource) (*PaintedResourceResult, error) {
	result, err := uc.painted.Decompose(ctx, customerID, manifestID, resources)
	if err != nil {
		return nil, err
	}
	if err := uc.assignCanvasIDs(ctx, customerID, result.Paintings); err != nil {
		return nil, err
	}
	if err := uc.paintings.ReplaceForManifest(ctx, customerID, manifestID, result.Paintings); err != nil {
		return nil, err
	}
	shell := &iiif.Manifest{
		ID:   uc.paths.ManifestID(customerID, manifestID),
		Type: iiif.TypeManifest,
	}
	if err := uc.manifests.PutSubmitted(ctx, customerID, manifestID, shell); err != nil {
		return nil, err
	}
	return result, nil
}

// CompleteIngest re-projects ingestion results onto the stored records and
// produces the manifest served to clients. A missing asset-source manifest
// is fatal for this invocation; the caller retries once it appears.
func (uc *ManifestUsecase) CompleteIngest(ctx context.Context, customerID int, manifestID string) (*iiif.Manifest, error) {
	paintings, err := uc.paintings.GetForManifest(ctx, customerID, manifestID)
	if err != nil {
		return nil, err
	}
	if len(paintings) == 0 {
		return nil, domain.NotFoundError{Resource: "manifest " + manifestID}
	}

	base, err := uc.manifests.GetSubmitted(ctx, customerID, manifestID)
	if errors.Is(err, domain.ErrNotFound) {
		base = &iiif.Manifest{}
	} else if err != nil {
		return nil, err
	}

	source, err := uc.source.Fetch(ctx, customerID, manifestID)
	if err != nil {
		return nil, err
	}

	if base.ID == "" {
		base.ID = uc.paths.ManifestID(customerID, manifestID)
	}
	updated, err := uc.merger.Merge(base, source, paintings)
	if err != nil {
		return nil, err
	}

	if err := uc.paintings.ReplaceForManifest(ctx, customerID, manifestID, updated); err != nil {
		return nil, err
	}
	if err := uc.manifests.PutServed(ctx, customerID, manifestID, base); err != nil {
		return nil, err
	}
	return base, nil
}

// GetManifest returns the merged document currently served for a manifest.
func (uc *ManifestUsecase) GetManifest(ctx context.Context, customerID int, manifestID string) (*iiif.Manifest, error) {
	return uc.manifests.GetServed(ctx, customerID, manifestID)
}

// GetPaintings returns the stored records for a manifest.
func (uc *ManifestUsecase) GetPaintings(ctx context.Context, customerID int, manifestID string) ([]domain.CanvasPainting, error) {
	return uc.paintings.GetForManifest(ctx, customerID, manifestID)
}

// assignCanvasIDs gives every canvas group without an explicit id a
// generated one; records sharing a grouping key share the id.
func (uc *ManifestUsecase) assignCanvasIDs(ctx context.Context, customerID int, paintings []domain.CanvasPainting) error {
	assigned := map[string]string{}
	for i := range paintings {
		if paintings[i].ID != "" {
			continue
		}
		key := paintings[i].GroupKey()
		id, ok := assigned[key]
		if !ok {
			var err error
			id, err = uc.ids.Generate(ctx, customerID)
			if err != nil {
				return err
			}
			assigned[key] = id
		}
		paintings[i].ID = id
	}
	return nil
}

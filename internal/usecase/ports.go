package usecase

import (
	"context"

	"github.com/dlcs/iiif-presentation-sub002"
	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
)

// CanvasPaintingRepository defines storage operations for canvas painting
// records.
type CanvasPaintingRepository interface {
	GetForManifest(ctx context.Context, customerID int, manifestID string) ([]domain.CanvasPainting, error)
	// ReplaceForManifest persists the full record set for one manifest,
	// superseding whatever was stored before.
	ReplaceForManifest(ctx context.Context, customerID int, manifestID string, paintings []domain.CanvasPainting) error
	// CanvasIDInUse reports whether another manifest of the same customer
	// already owns the canvas id.
	CanvasIDInUse(ctx context.Context, customerID int, canvasID, excludeManifestID string) (bool, error)
}

// ManifestStore persists the submitted document and the merged document
// served to clients.
type ManifestStore interface {
	PutSubmitted(ctx context.Context, customerID int, manifestID string, m *iiif.Manifest) error
	GetSubmitted(ctx context.Context, customerID int, manifestID string) (*iiif.Manifest, error)
	PutServed(ctx context.Context, customerID int, manifestID string, m *iiif.Manifest) error
	GetServed(ctx context.Context, customerID int, manifestID string) (*iiif.Manifest, error)
}

// CanvasIDGenerator produces canvas ids unique across one customer's
// manifests.
type CanvasIDGenerator interface {
	Generate(ctx context.Context, customerID int) (string, error)
}

// PathGenerator produces public identifiers from canvas painting records.
type PathGenerator interface {
	ManifestID(customerID int, manifestID string) string
	CanvasID(cp domain.CanvasPainting) string
	AnnotationPageID(cp domain.CanvasPainting) string
	AnnotationID(cp domain.CanvasPainting) string
}

// ImageRequestRewriter rewrites an image request id to an equivalent request
// for an exact size.
type ImageRequestRewriter interface {
	Resize(imageID string, width, height int) string
}

// AssetSourceGateway fetches the authoritative asset-source manifest for one
// stored manifest's assets.
type AssetSourceGateway interface {
	Fetch(ctx context.Context, customerID int, manifestID string) (*iiif.Manifest, error)
}

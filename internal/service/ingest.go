package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/dlcs/iiif-presentation-sub002"
	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
	"github.com/dlcs/iiif-presentation-sub002/internal/usecase"
)

var tracer = otel.Tracer("ingest")

// IngestService runs the batch-completion side of the round trip: merge the
// stored records with the freshly fetched asset source, then announce the
// result.
type IngestService struct {
	manifests *usecase.ManifestUsecase
	signal    *SignalService
}

func NewIngestService(
	manifests *usecase.ManifestUsecase,
	signal *SignalService,
) *IngestService {
	return &IngestService{
		manifests: manifests,
		signal:    signal,
	}
}

func (s *IngestService) Complete(ctx context.Context, customerID int, manifestID string) (*iiif.Manifest, error) {
	ctx, span := tracer.Start(ctx, "Ingest.Service.Complete")
	defer span.End()

	m, err := s.manifests.CompleteIngest(ctx, customerID, manifestID)
	if err != nil {
		span.RecordError(errors.Wrap(err, "ingest completion failed"))
		return nil, err
	}

	if s.signal != nil {
		event := domain.IngestEvent{
			Type:       domain.EventTypeIngestComplete,
			CustomerID: customerID,
			ManifestID: manifestID,
			Timestamp:  time.Now().UTC(),
		}
		if err := s.signal.Publish(ctx, event); err != nil {
			// The merge already happened; a lost announcement is not fatal.
			span.RecordError(errors.Wrap(err, "ingest event publish failed"))
		}
	}
	return m, nil
}

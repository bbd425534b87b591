package usecase

import (
	"github.com/dlcs/iiif-presentation-sub002"
	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
)

// DecomposeManifest walks the submitted manifest's canvases and painting
// annotations and emits one flat record per painted content resource, in
// source order. The canvas order accumulator is threaded through the walk
// and advances once per painting annotation; members of a Choice share it.
func DecomposeManifest(customerID int, manifestID string, m *iiif.Manifest) ([]domain.CanvasPainting, error) {
	var paintings []domain.CanvasPainting
	order := 0
	for _, canvas := range m.Items {
		emitted, next, err := decomposeCanvas(customerID, manifestID, canvas, order)
		if err != nil {
			return nil, err
		}
		paintings = append(paintings, emitted...)
		order = next
	}
	return paintings, nil
}

// decomposeCanvas emits records for one canvas starting at the given canvas
// order and returns the order the next canvas continues from.
func decomposeCanvas(customerID int, manifestID string, canvas *iiif.Canvas, order int) ([]domain.CanvasPainting, int, error) {
	var out []domain.CanvasPainting
	canvasLabelSet := false

	for _, page := range canvas.Items {
		for _, anno := range page.Items {
			if anno.Motivation != "" && anno.Motivation != iiif.MotivationPainting {
				continue
			}
			body := anno.Body
			if body == nil {
				return nil, 0, domain.UnsupportedBodyError{}
			}

			switch {
			case body.Type == iiif.BodyChoice:
				if len(body.Items) == 0 {
					return nil, 0, domain.ValidationError{
						Field:  anno.ID,
						Reason: "choice body has no items",
					}
				}
				for i, member := range body.Items {
					if !member.Type.IsContentType() {
						return nil, 0, domain.UnsupportedBodyError{BodyType: string(member.Type)}
					}
					cp := paintingFromResource(customerID, manifestID, canvas, anno, member, order)
					choice := i + 1
					cp.ChoiceOrder = &choice
					if i > 0 {
						// Later members paint the same target implicitly.
						cp.Target = ""
					}
					applyCanvasLabel(&cp, canvas, &canvasLabelSet)
					out = append(out, cp)
				}
				order++

			case body.Type.IsContentType():
				if body.Resource == nil {
					return nil, 0, domain.UnsupportedBodyError{BodyType: string(body.Type)}
				}
				cp := paintingFromResource(customerID, manifestID, canvas, anno, *body.Resource, order)
				applyCanvasLabel(&cp, canvas, &canvasLabelSet)
				out = append(out, cp)
				order++

			default:
				return nil, 0, domain.UnsupportedBodyError{BodyType: string(body.Type)}
			}
		}
	}
	return out, order, nil
}

func paintingFromResource(customerID int, manifestID string, canvas *iiif.Canvas, anno *iiif.PaintingAnnotation, r iiif.ContentResource, order int) domain.CanvasPainting {
	label := r.Label
	if len(label) == 0 {
		label = anno.Label
	}
	if len(label) == 0 {
		label = canvas.Label
	}

	cp := domain.CanvasPainting{
		ManifestID:       manifestID,
		CustomerID:       customerID,
		CanvasOriginalID: canvas.ID,
		CanvasOrder:      order,
		Label:            label,
		Target:           resolveTarget(anno.Target, canvas.ID),
		StaticWidth:      copyInt(r.Width),
		StaticHeight:     copyInt(r.Height),
		Duration:         copyFloat(r.Duration),
		Ingesting:        true,
	}

	if asset, err := iiif.ParseResourceAssetID(r.ID); err == nil {
		asset.Customer = customerID
		cp.AssetID = &asset
		// Externally managed content; the original canvas reference only
		// matters for pass-through paintings.
		cp.CanvasOriginalID = ""
	}
	return cp
}

// applyCanvasLabel attaches the canvas's own label to the first record whose
// resolved label differs from it, at most once per canvas.
func applyCanvasLabel(cp *domain.CanvasPainting, canvas *iiif.Canvas, done *bool) {
	if *done || len(canvas.Label) == 0 || canvas.Label.Equal(cp.Label) {
		return
	}
	cp.CanvasLabel = canvas.Label
	*done = true
}

// resolveTarget normalizes an annotation target: empty when absent or when
// it names the canvas itself, the sub-canvas identifier or serialized
// selector otherwise.
func resolveTarget(t *iiif.Target, canvasID string) string {
	if t == nil {
		return ""
	}
	if t.ID != "" {
		if t.ID == canvasID {
			return ""
		}
		return t.ID
	}
	return t.Serialize()
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

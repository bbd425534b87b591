package usecase

import (
	"log/slog"
	"strings"
	"time"

	"github.com/dlcs/iiif-presentation-sub002"
	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
)

// Merger rebuilds the canonical canvas tree from stored records and an
// authoritative asset-source manifest.
type Merger struct {
	paths   PathGenerator
	rewrite ImageRequestRewriter
	now     func() time.Time
}

func NewMerger(paths PathGenerator, rewrite ImageRequestRewriter) *Merger {
	return &Merger{paths: paths, rewrite: rewrite, now: time.Now}
}

// Merge populates base.Items from the records and the asset source, and
// returns a new record slice with ingestion results applied. The input
// records are not mutated; callers persist the returned slice in their
// place. Records whose assets have no source match are returned unchanged
// and their canvases stay absent, which is expected while assets are still
// ingesting.
func (m *Merger) Merge(base, source *iiif.Manifest, paintings []domain.CanvasPainting) ([]domain.CanvasPainting, error) {
	if source == nil {
		return nil, domain.NotFoundError{Resource: "asset source manifest"}
	}

	lookup := buildAssetLookup(source)

	updated := make([]domain.CanvasPainting, len(paintings))
	copy(updated, paintings)
	domain.SortPaintings(updated)

	baseByID := map[string]*iiif.Canvas{}
	for _, c := range base.Items {
		if c.ID != "" {
			baseByID[c.ID] = c
		}
	}

	// Group records by canvas, keeping first-appearance order. Only
	// asset-less pass-through groups may span several canvas orders.
	var groupOrder []string
	groups := map[string][]int{}
	for i := range updated {
		key := updated[i].GroupKey()
		if _, ok := groups[key]; !ok {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], i)
	}

	var items []*iiif.Canvas
	for _, key := range groupOrder {
		idxs := groups[key]
		if groupHasNoAssets(updated, idxs) {
			if c := passThroughCanvas(baseByID, updated, idxs); c != nil {
				items = append(items, c)
			}
			continue
		}
		if c := m.buildCanvas(updated, idxs, lookup); c != nil {
			items = append(items, c)
		}
	}
	base.Items = items

	if base.Type == "" {
		base.Type = iiif.TypeManifest
	}
	mergeContexts(base, source)
	return updated, nil
}

// buildAssetLookup keys source canvases by the asset identifier embedded in
// their ids. Malformed ids are diagnosed and skipped; they are not a lookup
// miss.
func buildAssetLookup(source *iiif.Manifest) map[string]*iiif.Canvas {
	lookup := make(map[string]*iiif.Canvas, len(source.Items))
	for _, c := range source.Items {
		asset, err := iiif.ParseCanvasAssetID(c.ID)
		if err != nil {
			slog.Debug("asset source canvas id is not parseable",
				slog.String("canvas", c.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		lookup[asset.String()] = c
	}
	return lookup
}

func groupHasNoAssets(updated []domain.CanvasPainting, idxs []int) bool {
	for _, i := range idxs {
		if updated[i].AssetID != nil {
			return false
		}
	}
	return true
}

// passThroughCanvas returns the base canvas an asset-less group refers to,
// verbatim. No match means the group falls through silently.
func passThroughCanvas(baseByID map[string]*iiif.Canvas, updated []domain.CanvasPainting, idxs []int) *iiif.Canvas {
	for _, i := range idxs {
		if c, ok := baseByID[updated[i].ID]; ok {
			return c
		}
		if c, ok := baseByID[updated[i].CanvasOriginalID]; ok {
			return c
		}
	}
	return nil
}

func (m *Merger) buildCanvas(updated []domain.CanvasPainting, idxs []int, lookup map[string]*iiif.Canvas) *iiif.Canvas {
	first := updated[idxs[0]]
	canvas := &iiif.Canvas{
		ID:   m.paths.CanvasID(first),
		Type: iiif.TypeCanvas,
	}

	// Canvas label: an explicit canvasLabel always wins; a lone painting
	// record promotes its own label, a multi-record canvas never does.
	for _, i := range idxs {
		if len(updated[i].CanvasLabel) > 0 {
			canvas.Label = updated[i].CanvasLabel
			break
		}
	}
	promoted := false
	if len(canvas.Label) == 0 && len(idxs) == 1 && len(first.Label) > 0 {
		canvas.Label = first.Label
		promoted = true
	}
	decorate := !promoted

	dimsSet := false
	behaviors := map[string]bool{}
	var annotations []*iiif.PaintingAnnotation

	for start := 0; start < len(idxs); {
		end := start + 1
		for end < len(idxs) && updated[idxs[end]].CanvasOrder == updated[idxs[start]].CanvasOrder {
			end++
		}
		anno := m.buildAnnotation(canvas, updated, idxs[start:end], lookup, &dimsSet, behaviors, decorate)
		if anno != nil {
			annotations = append(annotations, anno)
		}
		start = end
	}

	if len(annotations) == 0 {
		// Nothing resolved yet; the canvas stays absent from items.
		return nil
	}
	canvas.Items = []*iiif.AnnotationPage{{
		ID:    m.paths.AnnotationPageID(first),
		Type:  iiif.TypeAnnotationPage,
		Items: annotations,
	}}
	return canvas
}

// buildAnnotation resolves one canvas-order group: one record paints
// directly, several form a Choice in ascending choice order.
func (m *Merger) buildAnnotation(canvas *iiif.Canvas, updated []domain.CanvasPainting, sub []int, lookup map[string]*iiif.Canvas, dimsSet *bool, behaviors map[string]bool, decorate bool) *iiif.PaintingAnnotation {
	var resources []iiif.ContentResource
	target := ""
	resolved := false

	for _, i := range sub {
		rec := &updated[i]
		if rec.AssetID == nil {
			continue
		}
		src, ok := lookup[rec.AssetID.String()]
		if !ok {
			slog.Warn("no asset source match, leaving record unresolved",
				slog.String("manifest", rec.ManifestID),
				slog.String("asset", rec.AssetID.String()),
			)
			continue
		}
		rs := m.resolveBodies(rec, src, decorate)
		if len(rs) == 0 {
			slog.Warn("asset source canvas has no usable painting body",
				slog.String("canvas", src.ID),
			)
			continue
		}
		m.aggregateCanvas(canvas, src, dimsSet, behaviors)
		if target == "" && rec.Target != "" {
			target = rec.Target
		}
		m.markProcessed(rec, src, rs[0])
		resources = append(resources, rs...)
		resolved = true
	}
	if !resolved {
		return nil
	}

	var body *iiif.PaintingBody
	if len(sub) > 1 || len(resources) > 1 {
		body = iiif.NewChoice(resources)
	} else {
		body = iiif.NewBody(resources[0])
	}

	return &iiif.PaintingAnnotation{
		ID:         m.paths.AnnotationID(updated[sub[0]]),
		Type:       iiif.TypeAnnotation,
		Motivation: iiif.MotivationPainting,
		Body:       body,
		Target:     targetFromString(target, canvas.ID),
	}
}

// resolveBodies copies the paintable resources of a matched source canvas,
// flattening a source Choice rather than nesting it, and applies the
// record's overrides to each.
func (m *Merger) resolveBodies(rec *domain.CanvasPainting, src *iiif.Canvas, decorate bool) []iiif.ContentResource {
	anno := src.FirstPaintingAnnotation()
	if anno == nil || anno.Body == nil {
		return nil
	}
	var rs []iiif.ContentResource
	switch {
	case anno.Body.Type == iiif.BodyChoice:
		rs = append(rs, anno.Body.Items...)
	case anno.Body.Type.IsContentType() && anno.Body.Resource != nil:
		rs = append(rs, *anno.Body.Resource)
	default:
		return nil
	}
	for i := range rs {
		m.applyRecord(rec, &rs[i], decorate)
	}
	return rs
}

func (m *Merger) applyRecord(rec *domain.CanvasPainting, r *iiif.ContentResource, decorate bool) {
	if decorate && len(rec.Label) > 0 {
		r.Label = rec.Label
	}
	if rec.StaticWidth != nil && rec.StaticHeight != nil && r.Type == iiif.BodyImage {
		r.Width = copyInt(rec.StaticWidth)
		r.Height = copyInt(rec.StaticHeight)
		r.ID = m.rewrite.Resize(r.ID, *rec.StaticWidth, *rec.StaticHeight)
		return
	}
	if r.Width == nil && r.Height == nil {
		if w, h, ok := r.ServiceSize(); ok {
			r.Width = &w
			r.Height = &h
		}
	}
}

// aggregateCanvas folds one source canvas into canvas-level properties:
// renderings accumulate, behaviors union, the first non-empty thumbnail
// wins, dimensions come from the first processed record only.
func (m *Merger) aggregateCanvas(canvas, src *iiif.Canvas, dimsSet *bool, behaviors map[string]bool) {
	if !*dimsSet {
		canvas.Width = copyInt(src.Width)
		canvas.Height = copyInt(src.Height)
		canvas.Duration = copyFloat(src.Duration)
		*dimsSet = true
	}
	canvas.Rendering = append(canvas.Rendering, src.Rendering...)
	for _, b := range src.Behavior {
		if !behaviors[b] {
			behaviors[b] = true
			canvas.Behavior = append(canvas.Behavior, b)
		}
	}
	if len(canvas.Thumbnail) == 0 && len(src.Thumbnail) > 0 {
		canvas.Thumbnail = src.Thumbnail
	}
}

func (m *Merger) markProcessed(rec *domain.CanvasPainting, src *iiif.Canvas, body iiif.ContentResource) {
	rec.Ingesting = false
	if len(src.Thumbnail) > 0 {
		rec.Thumbnail = src.Thumbnail[0].ID
	}
	if src.Duration != nil {
		rec.Duration = copyFloat(src.Duration)
	}
	if rec.StaticWidth == nil && rec.StaticHeight == nil {
		rec.StaticWidth = copyInt(body.Width)
		rec.StaticHeight = copyInt(body.Height)
	}
	rec.Modified = m.now()
}

func targetFromString(target, canvasID string) *iiif.Target {
	if target == "" {
		return iiif.NewTarget(canvasID)
	}
	if strings.HasPrefix(target, "{") {
		return &iiif.Target{Raw: []byte(target)}
	}
	return iiif.NewTarget(target)
}

// mergeContexts propagates non-default contexts from the asset source onto
// the base manifest, de-duplicated, keeping the Presentation 3 context last.
func mergeContexts(base, source *iiif.Manifest) {
	var extras iiif.Contexts
	add := func(entries iiif.Contexts) {
		for _, e := range entries {
			if e != iiif.PresentationContext && !extras.Contains(e) {
				extras = append(extras, e)
			}
		}
	}
	add(base.Context)
	add(source.Context)
	base.Context = append(extras, iiif.PresentationContext)
}

package usecase

import (
	"errors"
	"testing"

	"github.com/dlcs/iiif-presentation-sub002"
	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func imageResource(id string) iiif.ContentResource {
	return iiif.ContentResource{ID: id, Type: iiif.BodyImage, Format: "image/jpeg"}
}

func canvasWith(id string, label iiif.LanguageMap, annos ...*iiif.PaintingAnnotation) *iiif.Canvas {
	return &iiif.Canvas{
		ID:    id,
		Type:  iiif.TypeCanvas,
		Label: label,
		Items: []*iiif.AnnotationPage{{
			ID:    id + "/page",
			Type:  iiif.TypeAnnotationPage,
			Items: annos,
		}},
	}
}

func paintingAnno(id string, body *iiif.PaintingBody) *iiif.PaintingAnnotation {
	return &iiif.PaintingAnnotation{
		ID:         id,
		Type:       iiif.TypeAnnotation,
		Motivation: iiif.MotivationPainting,
		Body:       body,
	}
}

func TestDecomposeManifestOrdering(t *testing.T) {
	m := &iiif.Manifest{
		Items: []*iiif.Canvas{
			canvasWith("https://example.org/c1", nil,
				paintingAnno("a1", iiif.NewBody(imageResource("https://dlc.services/iiif-img/5/2/one/full/max/0/default.jpg"))),
			),
			canvasWith("https://example.org/c2", nil,
				paintingAnno("a2", iiif.NewChoice([]iiif.ContentResource{
					imageResource("https://dlc.services/iiif-img/5/2/two/full/max/0/default.jpg"),
					imageResource("https://dlc.services/iiif-img/5/2/three/full/max/0/default.jpg"),
				})),
				paintingAnno("a3", iiif.NewBody(imageResource("https://dlc.services/iiif-img/5/2/four/full/max/0/default.jpg"))),
			),
		},
	}

	paintings, err := DecomposeManifest(5, "m1", m)
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	if len(paintings) != 4 {
		t.Fatalf("expected 4 records, got %d", len(paintings))
	}

	orders := []int{0, 1, 1, 2}
	for i, want := range orders {
		if paintings[i].CanvasOrder != want {
			t.Fatalf("record %d: canvas order %d, want %d", i, paintings[i].CanvasOrder, want)
		}
	}
	if paintings[0].ChoiceOrder != nil || paintings[3].ChoiceOrder != nil {
		t.Fatal("direct paintings must not carry a choice order")
	}
	if *paintings[1].ChoiceOrder != 1 || *paintings[2].ChoiceOrder != 2 {
		t.Fatal("choice members must be numbered from 1 in source order")
	}
	if err := domain.ValidateOrdering(paintings); err != nil {
		t.Fatalf("decomposed records must satisfy the ordering invariant: %v", err)
	}
}

func TestDecomposeAssetExtraction(t *testing.T) {
	m := &iiif.Manifest{
		Items: []*iiif.Canvas{
			canvasWith("https://example.org/c1", nil,
				paintingAnno("a1", iiif.NewBody(imageResource("https://dlc.services/iiif-img/99/2/photo/full/max/0/default.jpg"))),
			),
			canvasWith("https://example.org/c2", nil,
				paintingAnno("a2", iiif.NewBody(imageResource("https://elsewhere.org/picture.jpg"))),
			),
		},
	}

	paintings, err := DecomposeManifest(5, "m1", m)
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}

	if paintings[0].AssetID == nil {
		t.Fatal("parseable resource id should yield an asset id")
	}
	// The submitting customer owns the record, whatever the path says.
	if paintings[0].AssetID.Customer != 5 || paintings[0].AssetID.Space != 2 || paintings[0].AssetID.Asset != "photo" {
		t.Fatalf("unexpected asset id %+v", paintings[0].AssetID)
	}
	if paintings[0].CanvasOriginalID != "" {
		t.Fatal("asset-backed records must not keep the original canvas id")
	}

	if paintings[1].AssetID != nil {
		t.Fatal("unparseable resource id must not yield an asset id")
	}
	if paintings[1].CanvasOriginalID != "https://example.org/c2" {
		t.Fatalf("pass-through record should keep the canvas id, got %q", paintings[1].CanvasOriginalID)
	}
}

func TestDecomposeLabelPrecedence(t *testing.T) {
	resource := imageResource("https://dlc.services/iiif-img/5/2/one/full/max/0/default.jpg")
	resource.Label = iiif.Lang("en", "resource label")
	anno := paintingAnno("a1", iiif.NewBody(resource))
	anno.Label = iiif.Lang("en", "annotation label")

	m := &iiif.Manifest{Items: []*iiif.Canvas{
		canvasWith("https://example.org/c1", iiif.Lang("en", "canvas label"), anno),
	}}
	paintings, err := DecomposeManifest(5, "m1", m)
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	if !paintings[0].Label.Equal(iiif.Lang("en", "resource label")) {
		t.Fatalf("resource label should win, got %v", paintings[0].Label)
	}
	if !paintings[0].CanvasLabel.Equal(iiif.Lang("en", "canvas label")) {
		t.Fatalf("differing canvas label should be recorded, got %v", paintings[0].CanvasLabel)
	}

	// Without a resource label the annotation's is next.
	anno2 := paintingAnno("a1", iiif.NewBody(imageResource("https://dlc.services/iiif-img/5/2/one/full/max/0/default.jpg")))
	anno2.Label = iiif.Lang("en", "annotation label")
	m = &iiif.Manifest{Items: []*iiif.Canvas{canvasWith("https://example.org/c1", nil, anno2)}}
	paintings, err = DecomposeManifest(5, "m1", m)
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	if !paintings[0].Label.Equal(iiif.Lang("en", "annotation label")) {
		t.Fatalf("annotation label should win, got %v", paintings[0].Label)
	}
	if len(paintings[0].CanvasLabel) != 0 {
		t.Fatal("no canvas label to record")
	}
}

func TestDecomposeCanvasLabelFirstRecordOnly(t *testing.T) {
	m := &iiif.Manifest{Items: []*iiif.Canvas{
		canvasWith("https://example.org/c1", iiif.Lang("en", "canvas"),
			paintingAnno("a1", iiif.NewChoice([]iiif.ContentResource{
				imageResource("https://dlc.services/iiif-img/5/2/one/full/max/0/default.jpg"),
				imageResource("https://dlc.services/iiif-img/5/2/two/full/max/0/default.jpg"),
			})),
		),
	}}

	paintings, err := DecomposeManifest(5, "m1", m)
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	if len(paintings[0].CanvasLabel) == 0 {
		t.Fatal("first record should carry the canvas label")
	}
	if len(paintings[1].CanvasLabel) != 0 {
		t.Fatal("later records must not repeat the canvas label")
	}
}

func TestDecomposeTargetResolution(t *testing.T) {
	self := paintingAnno("a1", iiif.NewBody(imageResource("https://dlc.services/iiif-img/5/2/one/full/max/0/default.jpg")))
	self.Target = iiif.NewTarget("https://example.org/c1")

	sub := paintingAnno("a2", iiif.NewChoice([]iiif.ContentResource{
		imageResource("https://dlc.services/iiif-img/5/2/two/full/max/0/default.jpg"),
		imageResource("https://dlc.services/iiif-img/5/2/three/full/max/0/default.jpg"),
	}))
	sub.Target = iiif.NewTarget("https://example.org/c2#xywh=0,0,50,50")

	m := &iiif.Manifest{Items: []*iiif.Canvas{
		canvasWith("https://example.org/c1", nil, self),
		canvasWith("https://example.org/c2", nil, sub),
	}}

	paintings, err := DecomposeManifest(5, "m1", m)
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	if paintings[0].Target != "" {
		t.Fatalf("target naming the canvas itself resolves to empty, got %q", paintings[0].Target)
	}
	if paintings[1].Target != "https://example.org/c2#xywh=0,0,50,50" {
		t.Fatalf("unexpected target %q", paintings[1].Target)
	}
	if paintings[2].Target != "" {
		t.Fatal("only the first choice member carries the target")
	}
}

func TestDecomposeRejectsUnsupportedBody(t *testing.T) {
	bad := paintingAnno("a1", &iiif.PaintingBody{Type: "Canvas"})
	m := &iiif.Manifest{Items: []*iiif.Canvas{canvasWith("https://example.org/c1", nil, bad)}}

	if _, err := DecomposeManifest(5, "m1", m); !errors.Is(err, domain.ErrUnsupportedBody) {
		t.Fatalf("canvas-painting-canvas must be fatal, got %v", err)
	}

	empty := paintingAnno("a2", iiif.NewChoice(nil))
	m = &iiif.Manifest{Items: []*iiif.Canvas{canvasWith("https://example.org/c1", nil, empty)}}
	if _, err := DecomposeManifest(5, "m1", m); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty choice must be rejected, got %v", err)
	}
}

func TestDecomposeSkipsNonPaintingAnnotations(t *testing.T) {
	comment := &iiif.PaintingAnnotation{
		ID:         "a1",
		Type:       iiif.TypeAnnotation,
		Motivation: "commenting",
	}
	m := &iiif.Manifest{Items: []*iiif.Canvas{
		canvasWith("https://example.org/c1", nil, comment,
			paintingAnno("a2", iiif.NewBody(imageResource("https://dlc.services/iiif-img/5/2/one/full/max/0/default.jpg"))),
		),
	}}

	paintings, err := DecomposeManifest(5, "m1", m)
	if err != nil {
		t.Fatalf("decompose failed: %v", err)
	}
	if len(paintings) != 1 {
		t.Fatalf("commenting annotation should be skipped, got %d records", len(paintings))
	}
}

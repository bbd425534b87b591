package domain

import (
	"errors"
	"testing"

	"github.com/dlcs/iiif-presentation-sub002"
)

func intp(v int) *int { return &v }

func TestGroupKey(t *testing.T) {
	withID := CanvasPainting{ID: "canvas-1", CanvasOriginalID: "https://example.org/c1", CanvasOrder: 3}
	if withID.GroupKey() != "id:canvas-1" {
		t.Fatalf("explicit id should win, got %s", withID.GroupKey())
	}
	withOriginal := CanvasPainting{CanvasOriginalID: "https://example.org/c1", CanvasOrder: 3}
	if withOriginal.GroupKey() != "original:https://example.org/c1" {
		t.Fatalf("unexpected key %s", withOriginal.GroupKey())
	}
	bare := CanvasPainting{CanvasOrder: 3}
	if bare.GroupKey() != "order:3" {
		t.Fatalf("unexpected key %s", bare.GroupKey())
	}
}

func TestSortPaintings(t *testing.T) {
	paintings := []CanvasPainting{
		{CanvasOrder: 1, ChoiceOrder: intp(2), AssetID: &iiif.AssetID{Asset: "c"}},
		{CanvasOrder: 0, AssetID: &iiif.AssetID{Asset: "a"}},
		{CanvasOrder: 1, ChoiceOrder: intp(1), AssetID: &iiif.AssetID{Asset: "b"}},
	}
	SortPaintings(paintings)

	got := []string{paintings[0].AssetID.Asset, paintings[1].AssetID.Asset, paintings[2].AssetID.Asset}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order %v", got)
		}
	}
}

func TestValidateOrdering(t *testing.T) {
	ok := []CanvasPainting{
		{CanvasOrder: 0},
		{CanvasOrder: 1, ChoiceOrder: intp(1)},
		{CanvasOrder: 1, ChoiceOrder: intp(2)},
	}
	if err := ValidateOrdering(ok); err != nil {
		t.Fatalf("valid set rejected: %v", err)
	}

	dup := []CanvasPainting{
		{CanvasOrder: 0, ChoiceOrder: intp(1)},
		{CanvasOrder: 0, ChoiceOrder: intp(1)},
	}
	if err := ValidateOrdering(dup); !errors.Is(err, ErrOrdering) {
		t.Fatalf("duplicate choice order should fail, got %v", err)
	}

	mixed := []CanvasPainting{
		{CanvasOrder: 0},
		{CanvasOrder: 0, ChoiceOrder: intp(1)},
	}
	if err := ValidateOrdering(mixed); !errors.Is(err, ErrOrdering) {
		t.Fatalf("mixed direct and choice should fail, got %v", err)
	}

	multi := []CanvasPainting{
		{CanvasOrder: 2},
		{CanvasOrder: 2},
	}
	if err := ValidateOrdering(multi); !errors.Is(err, ErrOrdering) {
		t.Fatalf("two direct records on one order should fail, got %v", err)
	}
}

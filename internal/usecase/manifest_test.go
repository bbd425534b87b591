package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dlcs/iiif-presentation-sub002"
	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
)

type mockManifestStore struct {
	submitted map[string]*iiif.Manifest
	served    map[string]*iiif.Manifest
}

func newMockManifestStore() *mockManifestStore {
	return &mockManifestStore{
		submitted: map[string]*iiif.Manifest{},
		served:    map[string]*iiif.Manifest{},
	}
}

func storeKey(customerID int, manifestID string) string {
	return fmt.Sprintf("%d/%s", customerID, manifestID)
}

func (m *mockManifestStore) PutSubmitted(ctx context.Context, customerID int, manifestID string, doc *iiif.Manifest) error {
	m.submitted[storeKey(customerID, manifestID)] = doc
	return nil
}

func (m *mockManifestStore) GetSubmitted(ctx context.Context, customerID int, manifestID string) (*iiif.Manifest, error) {
	doc, ok := m.submitted[storeKey(customerID, manifestID)]
	if !ok {
		return nil, domain.NotFoundError{Resource: "manifest"}
	}
	return doc, nil
}

func (m *mockManifestStore) PutServed(ctx context.Context, customerID int, manifestID string, doc *iiif.Manifest) error {
	m.served[storeKey(customerID, manifestID)] = doc
	return nil
}

func (m *mockManifestStore) GetServed(ctx context.Context, customerID int, manifestID string) (*iiif.Manifest, error) {
	doc, ok := m.served[storeKey(customerID, manifestID)]
	if !ok {
		return nil, domain.NotFoundError{Resource: "manifest"}
	}
	return doc, nil
}

type mockIDGen struct {
	next int
}

func (m *mockIDGen) Generate(ctx context.Context, customerID int) (string, error) {
	m.next++
	return fmt.Sprintf("gen-%d", m.next), nil
}

type mockAssetSource struct {
	manifest *iiif.Manifest
	err      error
}

func (m *mockAssetSource) Fetch(ctx context.Context, customerID int, manifestID string) (*iiif.Manifest, error) {
	return m.manifest, m.err
}

func newTestUsecase(repo *mockPaintingRepo, store *mockManifestStore, source *mockAssetSource) *ManifestUsecase {
	return NewManifestUsecase(repo, store, &mockIDGen{}, stubPaths{}, testMerger(), source)
}

func TestWriteManifest(t *testing.T) {
	repo := &mockPaintingRepo{}
	store := newMockManifestStore()
	uc := newTestUsecase(repo, store, &mockAssetSource{})

	m := &iiif.Manifest{Items: []*iiif.Canvas{
		canvasWith("https://example.org/c1", nil,
			paintingAnno("a1", iiif.NewChoice([]iiif.ContentResource{
				imageResource("https://dlc.services/iiif-img/5/2/one/full/max/0/default.jpg"),
				imageResource("https://dlc.services/iiif-img/5/2/two/full/max/0/default.jpg"),
			})),
		),
	}}

	paintings, err := uc.WriteManifest(context.Background(), 5, "m1", m)
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !repo.replaced {
		t.Fatal("records should be persisted")
	}
	if _, ok := store.submitted["5/m1"]; !ok {
		t.Fatal("submitted document should be stored")
	}
	if paintings[0].ID == "" {
		t.Fatal("canvas ids should be assigned")
	}
	if paintings[0].ID != paintings[1].ID {
		t.Fatal("choice members share one canvas id")
	}
}

func TestWriteManifestRejectsBadBody(t *testing.T) {
	uc := newTestUsecase(&mockPaintingRepo{}, newMockManifestStore(), &mockAssetSource{})

	m := &iiif.Manifest{Items: []*iiif.Canvas{
		canvasWith("https://example.org/c1", nil,
			paintingAnno("a1", &iiif.PaintingBody{Type: "Manifest"}),
		),
	}}
	if _, err := uc.WriteManifest(context.Background(), 5, "m1", m); !errors.Is(err, domain.ErrUnsupportedBody) {
		t.Fatalf("expected unsupported body error, got %v", err)
	}
}

func TestWritePaintedResources(t *testing.T) {
	repo := &mockPaintingRepo{}
	store := newMockManifestStore()
	uc := newTestUsecase(repo, store, &mockAssetSource{})

	result, err := uc.WritePaintedResources(context.Background(), 5, "m1", []iiif.PaintedResource{
		asset("one"),
		asset("two"),
	})
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if len(result.Paintings) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Paintings))
	}
	if result.Paintings[0].ID == "" || result.Paintings[0].ID == result.Paintings[1].ID {
		t.Fatal("each canvas gets its own generated id")
	}

	shell, ok := store.submitted["5/m1"]
	if !ok {
		t.Fatal("a shell manifest should be stored")
	}
	if shell.ID != "https://pres.example/iiif/5/manifests/m1" || shell.Type != iiif.TypeManifest {
		t.Fatalf("unexpected shell %+v", shell)
	}
}

func TestCompleteIngest(t *testing.T) {
	repo := &mockPaintingRepo{stored: []domain.CanvasPainting{record("cv1", 0, "one")}}
	store := newMockManifestStore()
	store.submitted["5/m1"] = &iiif.Manifest{
		ID:    "https://pres.example/iiif/5/manifests/m1",
		Type:  iiif.TypeManifest,
		Label: iiif.Lang("en", "my manifest"),
	}
	source := &mockAssetSource{manifest: &iiif.Manifest{Items: []*iiif.Canvas{sourceCanvas("5/2/one", 800, 600)}}}
	uc := newTestUsecase(repo, store, source)

	m, err := uc.CompleteIngest(context.Background(), 5, "m1")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if len(m.Items) != 1 {
		t.Fatalf("expected 1 canvas, got %d", len(m.Items))
	}
	if !m.Label.Equal(iiif.Lang("en", "my manifest")) {
		t.Fatal("submitted manifest metadata should survive the merge")
	}
	if _, ok := store.served["5/m1"]; !ok {
		t.Fatal("served document should be stored")
	}
	if repo.stored[0].Ingesting {
		t.Fatal("processed records should be persisted back")
	}
}

func TestCompleteIngestWithoutSubmitted(t *testing.T) {
	repo := &mockPaintingRepo{stored: []domain.CanvasPainting{record("cv1", 0, "one")}}
	store := newMockManifestStore()
	source := &mockAssetSource{manifest: &iiif.Manifest{Items: []*iiif.Canvas{sourceCanvas("5/2/one", 800, 600)}}}
	uc := newTestUsecase(repo, store, source)

	m, err := uc.CompleteIngest(context.Background(), 5, "m1")
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	// Painted-resource manifests may have no submitted document yet; the
	// merge starts from an empty shell.
	if m.ID != "https://pres.example/iiif/5/manifests/m1" {
		t.Fatalf("shell should get the public manifest id, got %s", m.ID)
	}
	if m.Type != iiif.TypeManifest {
		t.Fatalf("unexpected type %s", m.Type)
	}
}

func TestCompleteIngestNoRecords(t *testing.T) {
	uc := newTestUsecase(&mockPaintingRepo{}, newMockManifestStore(), &mockAssetSource{})

	if _, err := uc.CompleteIngest(context.Background(), 5, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown manifest should be not found, got %v", err)
	}
}

func TestCompleteIngestSourceFailure(t *testing.T) {
	repo := &mockPaintingRepo{stored: []domain.CanvasPainting{record("cv1", 0, "one")}}
	store := newMockManifestStore()
	store.submitted["5/m1"] = &iiif.Manifest{}
	fetchErr := errors.New("named query timed out")
	uc := newTestUsecase(repo, store, &mockAssetSource{err: fetchErr})

	if _, err := uc.CompleteIngest(context.Background(), 5, "m1"); !errors.Is(err, fetchErr) {
		t.Fatalf("fetch failure should propagate, got %v", err)
	}
}

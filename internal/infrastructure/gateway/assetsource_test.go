package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dlcs/iiif-presentation-sub002/client"
)

func TestFetchExpandsTemplate(t *testing.T) {
	var requested string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"type":"Manifest","items":[]}`))
	}))
	defer server.Close()

	g := NewAssetSourceGateway(client.New(), server.URL+"/iiif-resource/{customer}/manifests/{manifest}")
	m, err := g.Fetch(context.Background(), 5, "m1")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if requested != "/iiif-resource/5/manifests/m1" {
		t.Fatalf("unexpected request path %s", requested)
	}
	if m.Type != "Manifest" {
		t.Fatalf("unexpected manifest %+v", m)
	}
}

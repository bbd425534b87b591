package gateway

import (
	"context"
	"strconv"
	"strings"

	"github.com/dlcs/iiif-presentation-sub002"
	"github.com/dlcs/iiif-presentation-sub002/client"
)

// AssetSourceGateway fetches the named-query manifest enumerating
// authoritative rendering data for a manifest's assets.
type AssetSourceGateway struct {
	client   *client.Client
	template string
}

// NewAssetSourceGateway takes the named-query URL template with {customer}
// and {manifest} placeholders.
func NewAssetSourceGateway(cl *client.Client, template string) *AssetSourceGateway {
	return &AssetSourceGateway{client: cl, template: template}
}

func (g *AssetSourceGateway) Fetch(ctx context.Context, customerID int, manifestID string) (*iiif.Manifest, error) {
	url := strings.NewReplacer(
		"{customer}", strconv.Itoa(customerID),
		"{manifest}", manifestID,
	).Replace(g.template)

	var m iiif.Manifest
	if err := g.client.FetchJSON(ctx, url, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

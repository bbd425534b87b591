package iiif

import (
	"fmt"
	"strconv"
	"strings"
)

// SpaceUnset marks an asset whose space is not yet known. Painted-resource
// submissions may omit the space; it is assigned in a second phase once the
// owning container is resolved.
const SpaceUnset = -1

// AssetID identifies externally managed binary content as customer/space/asset.
type AssetID struct {
	Customer int
	Space    int
	Asset    string
}

func (a AssetID) String() string {
	return fmt.Sprintf("%d/%d/%s", a.Customer, a.Space, a.Asset)
}

// HasSpace reports whether the deferred space assignment has happened.
func (a AssetID) HasSpace() bool {
	return a.Space != SpaceUnset
}

// ParseAssetID parses the canonical customer/space/asset form.
func ParseAssetID(s string) (AssetID, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return AssetID{}, fmt.Errorf("invalid asset id %q", s)
	}
	customer, err := strconv.Atoi(parts[0])
	if err != nil {
		return AssetID{}, fmt.Errorf("invalid asset id %q: bad customer", s)
	}
	space, err := strconv.Atoi(parts[1])
	if err != nil {
		return AssetID{}, fmt.Errorf("invalid asset id %q: bad space", s)
	}
	if parts[2] == "" {
		return AssetID{}, fmt.Errorf("invalid asset id %q: empty asset", s)
	}
	return AssetID{Customer: customer, Space: space, Asset: parts[2]}, nil
}

// ParseCanvasAssetID extracts the asset identifier embedded in an
// asset-source canvas id of the form .../customer/space/asset/canvas/c/...
// Malformed ids are an explicit error, distinct from a lookup miss.
func ParseCanvasAssetID(canvasID string) (AssetID, error) {
	segments := strings.Split(strings.Trim(canvasID, "/"), "/")
	for i, seg := range segments {
		if seg != "canvas" || i < 3 {
			continue
		}
		return ParseAssetID(strings.Join(segments[i-3:i], "/"))
	}
	return AssetID{}, fmt.Errorf("no asset id in canvas id %q", canvasID)
}

// ParseResourceAssetID extracts an asset identifier from a painted content
// resource id. Image requests embed the triple before the region segment
// ({base}/{customer}/{space}/{asset}/full/...); other resources end with it.
func ParseResourceAssetID(resourceID string) (AssetID, error) {
	segments := strings.Split(strings.Trim(resourceID, "/"), "/")
	for i, seg := range segments {
		if (seg != "full" && seg != "square") || i < 3 {
			continue
		}
		if id, err := ParseAssetID(strings.Join(segments[i-3:i], "/")); err == nil {
			return id, nil
		}
	}
	if len(segments) >= 3 {
		if id, err := ParseAssetID(strings.Join(segments[len(segments)-3:], "/")); err == nil {
			return id, nil
		}
	}
	return AssetID{}, fmt.Errorf("no asset id in resource id %q", resourceID)
}

// Characters that would break path segmentation of a canvas id.
const prohibitedCanvasIDChars = "/=,"

// ValidCanvasID reports whether an identifier is usable as a path segment.
func ValidCanvasID(id string) bool {
	return id != "" && !strings.ContainsAny(id, prohibitedCanvasIDChars)
}

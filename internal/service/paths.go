package service

import (
	"fmt"
	"strings"

	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
)

// PathService derives the public identifiers of manifests, canvases and
// annotations, and rewrites image request ids to exact sizes.
type PathService struct {
	config domain.Config
}

func NewPathService(config domain.Config) *PathService {
	return &PathService{config: config}
}

func (s *PathService) ManifestID(customerID int, manifestID string) string {
	return fmt.Sprintf("%s/iiif/%d/manifests/%s", s.config.PublicHost, customerID, manifestID)
}

func (s *PathService) CanvasID(cp domain.CanvasPainting) string {
	return fmt.Sprintf("%s/iiif/%d/canvases/%s", s.config.PublicHost, cp.CustomerID, cp.ID)
}

func (s *PathService) AnnotationPageID(cp domain.CanvasPainting) string {
	return fmt.Sprintf("%s/annopages/%d", s.CanvasID(cp), cp.CanvasOrder)
}

func (s *PathService) AnnotationID(cp domain.CanvasPainting) string {
	return fmt.Sprintf("%s/annotations/%d", s.CanvasID(cp), cp.CanvasOrder)
}

// Resize rewrites a IIIF image request to ask for an exact size. Image
// request paths carry {region}/{size}/{rotation}/{quality}.{format} after
// the asset; the size segment follows the region.
func (s *PathService) Resize(imageID string, width, height int) string {
	segments := strings.Split(imageID, "/")
	for i, seg := range segments {
		if (seg == "full" || seg == "square") && i+1 < len(segments) {
			segments[i+1] = fmt.Sprintf("%d,%d", width, height)
			return strings.Join(segments, "/")
		}
	}
	// Not an image request path; ask the image service directly.
	return fmt.Sprintf("%s/full/%d,%d/0/default.jpg", strings.TrimSuffix(imageID, "/"), width, height)
}

package service

import (
	"context"

	"github.com/google/uuid"
)

// IDService generates canvas identifiers unique across a customer's
// manifests. Random UUIDs carry none of the path-breaking characters the
// validator prohibits, so generated ids never collide with segmentation.
type IDService struct{}

func NewIDService() *IDService {
	return &IDService{}
}

func (s *IDService) Generate(ctx context.Context, customerID int) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

package repository

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/dlcs/iiif-presentation-sub002"
	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
	"github.com/dlcs/iiif-presentation-sub002/internal/infrastructure/database/models"
)

type CanvasPaintingRepository struct {
	db *gorm.DB
}

func NewCanvasPaintingRepository(db *gorm.DB) *CanvasPaintingRepository {
	return &CanvasPaintingRepository{db: db}
}

func (r *CanvasPaintingRepository) GetForManifest(ctx context.Context, customerID int, manifestID string) ([]domain.CanvasPainting, error) {
	var rows []models.CanvasPainting
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND manifest_id = ?", customerID, manifestID).
		Order("canvas_order, choice_order NULLS FIRST").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	paintings := make([]domain.CanvasPainting, 0, len(rows))
	for _, row := range rows {
		cp, err := toDomain(row)
		if err != nil {
			return nil, err
		}
		paintings = append(paintings, cp)
	}
	return paintings, nil
}

func (r *CanvasPaintingRepository) ReplaceForManifest(ctx context.Context, customerID int, manifestID string, paintings []domain.CanvasPainting) error {
	rows := make([]models.CanvasPainting, 0, len(paintings))
	for _, cp := range paintings {
		row, err := toModel(cp)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ? AND manifest_id = ?", customerID, manifestID).
			Delete(&models.CanvasPainting{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (r *CanvasPaintingRepository) CanvasIDInUse(ctx context.Context, customerID int, canvasID, excludeManifestID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CanvasPainting{}).
		Where("customer_id = ? AND canvas_id = ? AND manifest_id <> ?", customerID, canvasID, excludeManifestID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func toModel(cp domain.CanvasPainting) (models.CanvasPainting, error) {
	label, err := marshalLabel(cp.Label)
	if err != nil {
		return models.CanvasPainting{}, err
	}
	canvasLabel, err := marshalLabel(cp.CanvasLabel)
	if err != nil {
		return models.CanvasPainting{}, err
	}

	row := models.CanvasPainting{
		CanvasID:         cp.ID,
		ManifestID:       cp.ManifestID,
		CustomerID:       cp.CustomerID,
		CanvasOriginalID: cp.CanvasOriginalID,
		CanvasOrder:      cp.CanvasOrder,
		ChoiceOrder:      cp.ChoiceOrder,
		Label:            label,
		CanvasLabel:      canvasLabel,
		Target:           cp.Target,
		StaticWidth:      cp.StaticWidth,
		StaticHeight:     cp.StaticHeight,
		Thumbnail:        cp.Thumbnail,
		Duration:         cp.Duration,
		Ingesting:        cp.Ingesting,
		Modified:         cp.Modified,
	}
	if cp.AssetID != nil {
		row.AssetID = cp.AssetID.String()
	}
	return row, nil
}

func toDomain(row models.CanvasPainting) (domain.CanvasPainting, error) {
	label, err := unmarshalLabel(row.Label)
	if err != nil {
		return domain.CanvasPainting{}, err
	}
	canvasLabel, err := unmarshalLabel(row.CanvasLabel)
	if err != nil {
		return domain.CanvasPainting{}, err
	}

	cp := domain.CanvasPainting{
		ID:               row.CanvasID,
		ManifestID:       row.ManifestID,
		CustomerID:       row.CustomerID,
		CanvasOriginalID: row.CanvasOriginalID,
		CanvasOrder:      row.CanvasOrder,
		ChoiceOrder:      row.ChoiceOrder,
		Label:            label,
		CanvasLabel:      canvasLabel,
		Target:           row.Target,
		StaticWidth:      row.StaticWidth,
		StaticHeight:     row.StaticHeight,
		Thumbnail:        row.Thumbnail,
		Duration:         row.Duration,
		Ingesting:        row.Ingesting,
		Modified:         row.Modified,
	}
	if row.AssetID != "" {
		asset, err := iiif.ParseAssetID(row.AssetID)
		if err != nil {
			return domain.CanvasPainting{}, err
		}
		cp.AssetID = &asset
	}
	return cp, nil
}

func marshalLabel(label iiif.LanguageMap) (string, error) {
	if len(label) == 0 {
		// jsonb column; explicit null keeps the cast valid.
		return "null", nil
	}
	b, err := json.Marshal(label)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalLabel(s string) (iiif.LanguageMap, error) {
	if s == "" || s == "null" {
		return nil, nil
	}
	var label iiif.LanguageMap
	if err := json.Unmarshal([]byte(s), &label); err != nil {
		return nil, err
	}
	return label, nil
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/zeebo/xxh3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dlcs/iiif-presentation-sub002"
	"github.com/dlcs/iiif-presentation-sub002/internal/domain"
	"github.com/dlcs/iiif-presentation-sub002/internal/infrastructure/database/models"
)

const servedCacheTTL = 300 // seconds

// ManifestRepository persists manifest documents and keeps the served copy
// in memcached. A nil memcache client disables the cache.
type ManifestRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewManifestRepository(db *gorm.DB, mc *memcache.Client) *ManifestRepository {
	return &ManifestRepository{db: db, mc: mc}
}

func (r *ManifestRepository) PutSubmitted(ctx context.Context, customerID int, manifestID string, m *iiif.Manifest) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return err
	}

	row := models.ManifestDocument{
		ManifestID: manifestID,
		CustomerID: customerID,
		Submitted:  string(doc),
		// jsonb column; explicit null keeps the insert path valid.
		Served: "null",
		MDate:  time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "manifest_id"}, {Name: "customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"submitted", "m_date"}),
	}).Create(&row).Error
}

func (r *ManifestRepository) GetSubmitted(ctx context.Context, customerID int, manifestID string) (*iiif.Manifest, error) {
	row, err := r.get(ctx, customerID, manifestID)
	if err != nil {
		return nil, err
	}
	if row.Submitted == "" || row.Submitted == "null" {
		return nil, domain.NotFoundError{Resource: "submitted manifest " + manifestID}
	}
	var m iiif.Manifest
	if err := json.Unmarshal([]byte(row.Submitted), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ManifestRepository) PutServed(ctx context.Context, customerID int, manifestID string, m *iiif.Manifest) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return err
	}
	etag := fmt.Sprintf("%016x", xxh3.Hash(doc))

	var contexts []string
	for _, entry := range m.Context {
		if entry != iiif.PresentationContext {
			contexts = append(contexts, entry)
		}
	}

	row := models.ManifestDocument{
		ManifestID:    manifestID,
		CustomerID:    customerID,
		Submitted:     "null",
		Served:        string(doc),
		SavedContexts: contexts,
		ETag:          etag,
		MDate:         time.Now(),
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "manifest_id"}, {Name: "customer_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"served", "saved_contexts", "e_tag", "m_date"}),
	}).Create(&row).Error
	if err != nil {
		return err
	}

	if r.mc != nil {
		// Best effort: the database row is authoritative.
		_ = r.mc.Set(&memcache.Item{
			Key:        servedCacheKey(customerID, manifestID),
			Value:      doc,
			Expiration: servedCacheTTL,
		})
	}
	return nil
}

func (r *ManifestRepository) GetServed(ctx context.Context, customerID int, manifestID string) (*iiif.Manifest, error) {
	if r.mc != nil {
		if item, err := r.mc.Get(servedCacheKey(customerID, manifestID)); err == nil {
			var m iiif.Manifest
			if err := json.Unmarshal(item.Value, &m); err == nil {
				return &m, nil
			}
		}
	}

	row, err := r.get(ctx, customerID, manifestID)
	if err != nil {
		return nil, err
	}
	if row.Served == "" || row.Served == "null" {
		return nil, domain.NotFoundError{Resource: "manifest " + manifestID}
	}
	var m iiif.Manifest
	if err := json.Unmarshal([]byte(row.Served), &m); err != nil {
		return nil, err
	}

	if r.mc != nil {
		_ = r.mc.Set(&memcache.Item{
			Key:        servedCacheKey(customerID, manifestID),
			Value:      []byte(row.Served),
			Expiration: servedCacheTTL,
		})
	}
	return &m, nil
}

func (r *ManifestRepository) get(ctx context.Context, customerID int, manifestID string) (*models.ManifestDocument, error) {
	var row models.ManifestDocument
	err := r.db.WithContext(ctx).
		Where("manifest_id = ? AND customer_id = ?", manifestID, customerID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFoundError{Resource: "manifest " + manifestID}
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func servedCacheKey(customerID int, manifestID string) string {
	return fmt.Sprintf("manifest:%d:%s", customerID, manifestID)
}

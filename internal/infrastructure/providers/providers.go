package providers

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/dlcs/iiif-presentation-sub002/client"
	"github.com/dlcs/iiif-presentation-sub002/internal/config"
	"github.com/dlcs/iiif-presentation-sub002/internal/infrastructure/database"
	"github.com/dlcs/iiif-presentation-sub002/internal/infrastructure/gateway"
)

// NewDatabase opens a Postgres connection using the configured DSN.
func NewDatabase(conf config.Server) (*gorm.DB, error) {
	return database.NewPostgres(conf.PostgresDsn)
}

// MigrateDatabase applies migrations for the application models.
func MigrateDatabase(db *gorm.DB) error {
	return database.MigratePostgres(db)
}

// NewMemcache creates a memcache client.
func NewMemcache(addr string) *memcache.Client {
	return database.NewMemcached(addr)
}

// NewRedis creates the redis client used for ingest signalling.
func NewRedis(conf config.Server) *redis.Client {
	return database.NewRedis(conf.RedisAddr, "", conf.RedisDB)
}

// NewClient constructs the HTTP client used to reach the asset source.
func NewClient() *client.Client {
	return client.New()
}

// NewAssetSourceGateway constructs the named-query gateway backed by the
// HTTP client.
func NewAssetSourceGateway(cl *client.Client, conf config.Presentation) *gateway.AssetSourceGateway {
	return gateway.NewAssetSourceGateway(cl, conf.AssetSourceTemplate)
}

package storage

import (
	"context"

	"github.com/matzehuels/gridlayout/pkg/config"
	"github.com/matzehuels/gridlayout/pkg/errors"
)

// Open builds the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.Storage) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileStore(cfg.Path)
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.DSN)
	case config.BackendRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	case config.BackendMongo:
		return NewMongoStore(ctx, MongoOptions{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
	case config.BackendHTTP:
		return NewHTTPStore(HTTPOptions{URL: cfg.HTTP.URL, Token: cfg.HTTP.Token})
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown storage backend %q", cfg.Backend)
}

package cache

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/hypertile/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend"`

	// Dir is the FileCache directory. Empty uses DefaultDir.
	Dir string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// DefaultDir is $HOME/.cache/hypertile.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "hypertile"), nil
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case "", BackendFile, BackendNone:
		return nil
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "redis cache needs an address")
		}
		return errors.ValidateAddr(c.RedisAddr)
	case BackendMongo:
		if c.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "mongo cache needs a URI")
		}
		return errors.ValidateMongoURI(c.MongoURI)
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want file, none, redis or mongo)", c.Backend)
	}
}

// Open returns the configured backend. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendNone:
		return NewNullCache(), nil
	case BackendRedis:
		c, err := NewRedisCache(ctx, RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "open redis cache")
		}
		return c, nil
	case BackendMongo:
		c, err := NewMongoCache(ctx, MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase, Collection: cfg.MongoCollection})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNetwork, err, "open mongo cache")
		}
		return c, nil
	default:
		dir := cfg.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate cache directory")
			}
			dir = d
		}
		c, err := NewFileCache(dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open file cache %s", dir)
		}
		return c, nil
	}
}

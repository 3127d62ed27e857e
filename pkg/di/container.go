// Package di provides dependency injection container
package di

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/ssargent/cloudrecord/pkg/codec"
	"github.com/ssargent/cloudrecord/pkg/config"
	"github.com/ssargent/cloudrecord/pkg/logger"
	"github.com/ssargent/cloudrecord/pkg/record"
	"github.com/ssargent/cloudrecord/pkg/storage"
)

// CacheOpener opens the record cache at a path
type CacheOpener func(path string, opts storage.Options) (*storage.Cache, error)

// Container holds all the dependencies for the application
type Container struct {
	config      *config.Config
	logger      zerolog.Logger
	registry    *prometheus.Registry
	cacheOpener CacheOpener
	cache       *storage.Cache
}

// NewContainer creates a new dependency injection container. A nil cfg
// uses the defaults.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return &Container{
		config:      cfg,
		logger:      l,
		registry:    prometheus.NewRegistry(),
		cacheOpener: storage.Open,
	}, nil
}

// GetConfig returns the active configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger tagged with component
func (c *Container) GetLogger(component string) zerolog.Logger {
	return c.logger.With().Str("component", component).Logger()
}

// GetRegistry returns the metrics registry shared by all components
func (c *Container) GetRegistry() *prometheus.Registry {
	return c.registry
}

// GetCodec returns a codec honoring the configured field-failure policy
func (c *Container) GetCodec() *codec.Codec {
	l := c.GetLogger("codec")
	return codec.New(codec.Options{
		AllowPartial: c.config.Codec.AllowPartialRecords,
		Logger:       &l,
	})
}

// GetNameGenerator returns the configured record name generator
func (c *Container) GetNameGenerator() record.NameGenerator {
	gen, err := record.GeneratorFor(c.config.Records.NameScheme)
	if err != nil {
		// Validate already rejected unknown schemes.
		return record.KSUIDNames
	}
	return gen
}

// NewRecord creates a record in the configured default zone
func (c *Container) NewRecord(recordType string) *record.Record {
	return record.NewInZone(recordType, c.config.Records.Zone(), c.GetNameGenerator())
}

// GetCache opens the record cache on first use
func (c *Container) GetCache() (*storage.Cache, error) {
	if c.cache != nil {
		return c.cache, nil
	}
	if err := os.MkdirAll(c.config.CacheDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	l := c.GetLogger("cache")
	cache, err := c.cacheOpener(c.config.CacheDir, storage.Options{
		Codec:      c.GetCodec(),
		Registerer: c.registry,
		Logger:     &l,
	})
	if err != nil {
		return nil, err
	}
	c.cache = cache
	return cache, nil
}

// SetCacheOpener allows overriding how the cache is opened (for testing)
func (c *Container) SetCacheOpener(opener CacheOpener) {
	c.cacheOpener = opener
}

// Close releases the cache if it was opened
func (c *Container) Close() error {
	if c.cache == nil {
		return nil
	}
	err := c.cache.Close()
	c.cache = nil
	return err
}

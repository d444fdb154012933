// Package config holds a table's recognized configuration options and
// the tracer/logger it is opened with.
package config

import (
	"github.com/imdario/mergo"
	opentracing "github.com/opentracing/opentracing-go"
	units "github.com/docker/go-units"
	"go.uber.org/zap"
)

// Config carries the options spec.md §6 recognizes: the reference id
// file location is implicit (it lives in the table directory itself),
// the shard count/chunk size/per-shard cap, and options forwarded
// verbatim to each shard's engine.
type Config struct {
	MaxTableSize int64             `mapstructure:"maxTableSize" json:"maxTableSize,omitempty" yaml:"maxTableSize,omitempty"`
	ShardCount   int               `mapstructure:"shardCount" json:"shardCount,omitempty" yaml:"shardCount,omitempty"`
	ChunkSize    int               `mapstructure:"chunkSize" json:"chunkSize,omitempty" yaml:"chunkSize,omitempty"`
	ShardMaxSize int64             `mapstructure:"shardMaxSize" json:"shardMaxSize,omitempty" yaml:"shardMaxSize,omitempty"`
	SBucketOpts  map[string]string `mapstructure:"sBucketOpts" json:"sBucketOpts,omitempty" yaml:"sBucketOpts,omitempty"`

	// ReferenceID, when set, is the 40-hex-char override for a table's
	// reference id R, recognized only the first time a table is opened
	// (a table already on disk keeps the id it was created with). Left
	// empty, R is generated at random.
	ReferenceID string `mapstructure:"referenceId" json:"referenceId,omitempty" yaml:"referenceId,omitempty"`

	logger *zap.Logger
	tracer opentracing.Tracer
}

// Logger returns the configured logger, or a no-op logger if none was set.
func (c *Config) Logger() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}

// Tracer returns the configured tracer, or a no-op tracer if none was set.
func (c *Config) Tracer() opentracing.Tracer {
	if c.tracer == nil {
		return opentracing.NoopTracer{}
	}
	return c.tracer
}

// WithLogger sets the config's logger and returns it for chaining.
func (c *Config) WithLogger(l *zap.Logger) *Config { c.logger = l; return c }

// WithTracer sets the config's tracer and returns it for chaining.
func (c *Config) WithTracer(t opentracing.Tracer) *Config { c.tracer = t; return c }

// ShardCountCanonical is the fixed shard count the key algebra's
// canonical ShardIndex routes across.
const ShardCountCanonical = 256

// DefaultChunkSize is the default chunk size, C, in bytes.
const DefaultChunkSize = 128 * units.KiB

// DefaultShardMaxSize is the default per-shard cap, S_max, in bytes.
const DefaultShardMaxSize = 32 * units.GiB

// Default returns the package defaults: 256 shards, 128 KiB chunks,
// 32 GiB per shard (8 TiB total).
func Default() Config {
	return Config{
		MaxTableSize: ShardCountCanonical * DefaultShardMaxSize,
		ShardCount:   ShardCountCanonical,
		ChunkSize:    DefaultChunkSize,
		ShardMaxSize: DefaultShardMaxSize,
	}
}

// WithOverrides merges o onto a copy of c: any non-zero field of o
// wins. sBucketOpts entries in o are merged key-by-key rather than
// replacing the whole map.
func (c Config) WithOverrides(o Config) (Config, error) {
	merged := c
	merged.logger = nil
	merged.tracer = nil

	if err := mergo.Merge(&merged, o, mergo.WithOverride); err != nil {
		return Config{}, err
	}
	merged.logger = c.logger
	merged.tracer = c.tracer
	if o.logger != nil {
		merged.logger = o.logger
	}
	if o.tracer != nil {
		merged.tracer = o.tracer
	}
	return merged, nil
}

// Package config provides configuration loading and management for artgraph.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/c360studio/artgraph/export"
	"github.com/c360studio/artgraph/graph"
	"github.com/c360studio/artgraph/identity"
	"github.com/c360studio/artgraph/mapper"
	"github.com/c360studio/artgraph/source"
	"github.com/c360studio/artgraph/thesaurus"
	semconfig "github.com/c360studio/semstreams/config"
	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	CacheBackendFile  = "file"
	CacheBackendNATS  = "nats"
	CacheBackendRedis = "redis"
)

// Config represents the complete artgraph configuration
type Config struct {
	Source    SourceConfig        `yaml:"source"`
	Thesaurus ThesaurusConfig     `yaml:"thesaurus"`
	Cache     CacheConfig         `yaml:"cache"`
	Identity  identity.Namespaces `yaml:"identity"`
	Output    OutputConfig        `yaml:"output"`
	NATS      NATSConfig          `yaml:"nats"`
	Neo4j     Neo4jConfig         `yaml:"neo4j"`
	Metrics   MetricsConfig       `yaml:"metrics"`
}

// SourceConfig configures where records and term pages come from
type SourceConfig struct {
	// RecordURL is the record API base. Ignored when Input is set.
	RecordURL string `yaml:"record_url"`
	// TermURL is the term page template with {locale} and {id} placeholders
	TermURL string `yaml:"term_url"`
	// Input holds glob patterns of record JSON files (e.g. "records/**/*.json")
	Input []string `yaml:"input"`
	// Timeout bounds each HTTP request
	Timeout time.Duration `yaml:"timeout"`
	// Retries is the number of retries for transient HTTP failures
	Retries   int    `yaml:"retries"`
	UserAgent string `yaml:"user_agent"`
	// Debounce is how long watch mode waits for more file changes
	Debounce time.Duration `yaml:"debounce"`
}

// ThesaurusConfig configures term resolution
type ThesaurusConfig struct {
	// Locales are fetched in order; the first one is canonical
	Locales []string `yaml:"locales"`
	// MaxDepth bounds how far broader/narrower/related terms are expanded
	MaxDepth int `yaml:"max_depth"`
	// FieldModes maps concept fields (keywords, artform, medium, surface)
	// to "reference" or "full"
	FieldModes map[string]string `yaml:"field_modes"`
}

// CacheConfig configures the persistent term cache
type CacheConfig struct {
	// Backend is one of file, nats or redis
	Backend string `yaml:"backend"`
	// Path is the cache file of the file backend
	Path string `yaml:"path"`
	// Bucket is the JetStream KV bucket of the nats backend
	Bucket string `yaml:"bucket"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisKey      string `yaml:"redis_key"`
}

// OutputConfig configures the exported graph
type OutputConfig struct {
	// Path is the output file; empty writes to stdout
	Path string `yaml:"path"`
	// Format is trig, turtle, ntriples or jsonld
	Format string `yaml:"format"`
	// Graph names the graph of TriG and JSON-LD output
	Graph string `yaml:"graph"`
	// Dataset is linked from every work
	Dataset string `yaml:"dataset"`
	// ImageURLTemplate builds image IRIs from image ids
	ImageURLTemplate string `yaml:"image_url_template"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL (empty = no NATS)
	URL string `yaml:"url"`
	// Publish enables publishing the assembled graph to Subject
	Publish bool   `yaml:"publish"`
	Subject string `yaml:"subject"`
}

// Neo4jConfig configures the optional Neo4j sink
type Neo4jConfig struct {
	// URI is the bolt URI (empty = disabled)
	URI      string        `yaml:"uri"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MetricsConfig configures the metrics endpoint
type MetricsConfig struct {
	// Addr is the listen address of the promhttp handler (empty = disabled)
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			RecordURL: source.DefaultRecordURL,
			TermURL:   source.DefaultTermURL,
			Timeout:   30 * time.Second,
			Retries:   2,
			UserAgent: "artgraph/1.0",
			Debounce:  source.DefaultDebounce,
		},
		Thesaurus: ThesaurusConfig{
			Locales:  []string{"nl", "en"},
			MaxDepth: 3,
			FieldModes: map[string]string{
				mapper.FieldKeywords: "reference",
				mapper.FieldArtform:  "full",
				mapper.FieldMedium:   "full",
				mapper.FieldSurface:  "full",
			},
		},
		Cache: CacheConfig{
			Backend: CacheBackendFile,
			Path:    "rkd_thesaurus.json",
		},
		Identity: identity.DefaultNamespaces(),
		Output: OutputConfig{
			Path:             "",
			Format:           string(export.FormatTriG),
			Graph:            export.DefaultGraph,
			Dataset:          mapper.DefaultDataset,
			ImageURLTemplate: mapper.DefaultImageURLTemplate,
		},
		NATS: NATSConfig{
			Subject: graph.GraphIngestSubject,
		},
		Neo4j: Neo4jConfig{
			User:    "neo4j",
			Timeout: 10 * time.Second,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := export.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if len(c.Thesaurus.Locales) == 0 {
		return fmt.Errorf("thesaurus.locales is required")
	}
	if c.Thesaurus.MaxDepth < 1 {
		return fmt.Errorf("thesaurus.max_depth must be at least 1")
	}
	for field, mode := range c.Thesaurus.FieldModes {
		if _, err := thesaurus.ParseMode(mode); err != nil {
			return fmt.Errorf("thesaurus.field_modes.%s: %w", field, err)
		}
	}
	if c.Source.Retries < 0 {
		return fmt.Errorf("source.retries must not be negative")
	}

	switch c.Cache.Backend {
	case CacheBackendFile:
		if c.Cache.Path == "" {
			return fmt.Errorf("cache.path is required for the file backend")
		}
	case CacheBackendNATS:
		if c.NATS.URL == "" {
			return fmt.Errorf("nats.url is required for the nats cache backend")
		}
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be one of file, nats, redis (got %q)", c.Cache.Backend)
	}

	if c.NATS.Publish && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats.publish is set")
	}
	return nil
}

// FieldModes returns the parsed concept field modes. Call Validate first.
func (c *Config) FieldModes() map[string]thesaurus.Mode {
	modes := make(map[string]thesaurus.Mode, len(c.Thesaurus.FieldModes))
	for field, s := range c.Thesaurus.FieldModes {
		if mode, err := thesaurus.ParseMode(s); err == nil {
			modes[field] = mode
		}
	}
	return modes
}

// LoadFromFile loads configuration from a YAML file. ${VAR} and
// ${VAR:-default} references are expanded before parsing.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal([]byte(semconfig.ExpandEnvWithDefaults(string(data))), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Source
	setString(&c.Source.RecordURL, other.Source.RecordURL)
	setString(&c.Source.TermURL, other.Source.TermURL)
	if len(other.Source.Input) > 0 {
		c.Source.Input = other.Source.Input
	}
	if other.Source.Timeout != 0 {
		c.Source.Timeout = other.Source.Timeout
	}
	if other.Source.Retries != 0 {
		c.Source.Retries = other.Source.Retries
	}
	setString(&c.Source.UserAgent, other.Source.UserAgent)
	if other.Source.Debounce != 0 {
		c.Source.Debounce = other.Source.Debounce
	}

	// Thesaurus
	if len(other.Thesaurus.Locales) > 0 {
		c.Thesaurus.Locales = other.Thesaurus.Locales
	}
	if other.Thesaurus.MaxDepth != 0 {
		c.Thesaurus.MaxDepth = other.Thesaurus.MaxDepth
	}
	if len(other.Thesaurus.FieldModes) > 0 {
		modes := make(map[string]string, len(c.Thesaurus.FieldModes)+len(other.Thesaurus.FieldModes))
		for field, mode := range c.Thesaurus.FieldModes {
			modes[field] = mode
		}
		for field, mode := range other.Thesaurus.FieldModes {
			modes[field] = mode
		}
		c.Thesaurus.FieldModes = modes
	}

	// Cache
	setString(&c.Cache.Backend, other.Cache.Backend)
	setString(&c.Cache.Path, other.Cache.Path)
	setString(&c.Cache.Bucket, other.Cache.Bucket)
	setString(&c.Cache.RedisAddr, other.Cache.RedisAddr)
	setString(&c.Cache.RedisPassword, other.Cache.RedisPassword)
	if other.Cache.RedisDB != 0 {
		c.Cache.RedisDB = other.Cache.RedisDB
	}
	setString(&c.Cache.RedisKey, other.Cache.RedisKey)

	// Identity
	setString(&c.Identity.Work, other.Identity.Work)
	setString(&c.Identity.Person, other.Identity.Person)
	setString(&c.Identity.Place, other.Identity.Place)
	setString(&c.Identity.Concept, other.Identity.Concept)
	setString(&c.Identity.Anonymous, other.Identity.Anonymous)

	// Output
	setString(&c.Output.Path, other.Output.Path)
	setString(&c.Output.Format, other.Output.Format)
	setString(&c.Output.Graph, other.Output.Graph)
	setString(&c.Output.Dataset, other.Output.Dataset)
	setString(&c.Output.ImageURLTemplate, other.Output.ImageURLTemplate)

	// NATS
	setString(&c.NATS.URL, other.NATS.URL)
	if other.NATS.Publish {
		c.NATS.Publish = true
	}
	setString(&c.NATS.Subject, other.NATS.Subject)

	// Neo4j
	setString(&c.Neo4j.URI, other.Neo4j.URI)
	setString(&c.Neo4j.User, other.Neo4j.User)
	setString(&c.Neo4j.Password, other.Neo4j.Password)
	setString(&c.Neo4j.Database, other.Neo4j.Database)
	if other.Neo4j.Timeout != 0 {
		c.Neo4j.Timeout = other.Neo4j.Timeout
	}

	// Metrics
	setString(&c.Metrics.Addr, other.Metrics.Addr)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

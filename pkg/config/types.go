package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent miner configuration stored as config.toml
// in the .miner/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Storage   StorageConfig   `toml:"storage"`
	API       APIConfig       `toml:"api"`
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Events    EventsConfig    `toml:"events"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Filter    FilterConfig    `toml:"filter"`
	Explain   ExplainConfig   `toml:"explain"`
}

// StorageConfig holds vector index and audit store settings.
type StorageConfig struct {
	// VectorProvider is auto, flat, or sqlitevec.
	VectorProvider string `toml:"vector_provider,omitempty"`

	// VectorPath is the on-disk artifact path for the vector index.
	VectorPath string `toml:"vector_path,omitempty"`

	// AuditProvider is sqlite, postgres, or inmemory.
	AuditProvider string `toml:"audit_provider,omitempty"`

	// AuditPath is the sqlite database file for audit records.
	AuditPath string `toml:"audit_path,omitempty"`

	// AuditConn is the postgres connection string for audit records.
	AuditConn string `toml:"audit_conn,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`

	// Key guards the mutating endpoints when non-empty.
	Key string `toml:"key,omitempty"`

	// RateLimit is requests per minute per client. Zero disables limiting.
	RateLimit int `toml:"rate_limit,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// LLMConfig holds completion provider settings.
type LLMConfig struct {
	Provider  string `toml:"provider,omitempty"`
	Target    string `toml:"target,omitempty"`
	Model     string `toml:"model,omitempty"`
	MaxTokens int    `toml:"max_tokens,omitempty"`
}

// EventsConfig holds event stream settings.
type EventsConfig struct {
	Enabled bool     `toml:"enabled,omitempty"`
	Brokers []string `toml:"brokers,omitempty"`
	Topic   string   `toml:"topic,omitempty"`
}

// ChunkingConfig holds document chunker settings.
type ChunkingConfig struct {
	Window  int `toml:"window,omitempty"`
	Overlap int `toml:"overlap,omitempty"`
}

// FilterConfig holds output filter policy settings.
type FilterConfig struct {
	PolicyKeyword string `toml:"policy_keyword,omitempty"`
	PolicyMaxLen  int    `toml:"policy_max_len,omitempty"`
}

// ExplainConfig holds explainability settings.
type ExplainConfig struct {
	// TopN bounds the masked generation calls per explained query.
	TopN int `toml:"top_n,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func intKey(get func(c *Config) *int) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *get(c) == 0 {
				return ""
			}
			return strconv.Itoa(*get(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer value %q: %w", v, err)
			}
			*get(c) = n
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.vector_provider": {
		get: func(c *Config) string { return c.Storage.VectorProvider },
		set: func(c *Config, v string) error { c.Storage.VectorProvider = v; return nil },
	},
	"storage.vector_path": {
		get: func(c *Config) string { return c.Storage.VectorPath },
		set: func(c *Config, v string) error { c.Storage.VectorPath = v; return nil },
	},
	"storage.audit_provider": {
		get: func(c *Config) string { return c.Storage.AuditProvider },
		set: func(c *Config, v string) error { c.Storage.AuditProvider = v; return nil },
	},
	"storage.audit_path": {
		get: func(c *Config) string { return c.Storage.AuditPath },
		set: func(c *Config, v string) error { c.Storage.AuditPath = v; return nil },
	},
	"storage.audit_conn": {
		get: func(c *Config) string { return c.Storage.AuditConn },
		set: func(c *Config, v string) error { c.Storage.AuditConn = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"api.key": {
		get: func(c *Config) string { return c.API.Key },
		set: func(c *Config, v string) error { c.API.Key = v; return nil },
	},
	"api.rate_limit": intKey(func(c *Config) *int { return &c.API.RateLimit }),
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"llm.provider": {
		get: func(c *Config) string { return c.LLM.Provider },
		set: func(c *Config, v string) error { c.LLM.Provider = v; return nil },
	},
	"llm.target": {
		get: func(c *Config) string { return c.LLM.Target },
		set: func(c *Config, v string) error { c.LLM.Target = v; return nil },
	},
	"llm.model": {
		get: func(c *Config) string { return c.LLM.Model },
		set: func(c *Config, v string) error { c.LLM.Model = v; return nil },
	},
	"llm.max_tokens": intKey(func(c *Config) *int { return &c.LLM.MaxTokens }),
	"events.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Events.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for events.enabled: %w", err)
			}
			c.Events.Enabled = b
			return nil
		},
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"chunking.window":       intKey(func(c *Config) *int { return &c.Chunking.Window }),
	"chunking.overlap":      intKey(func(c *Config) *int { return &c.Chunking.Overlap }),
	"filter.policy_keyword": {
		get: func(c *Config) string { return c.Filter.PolicyKeyword },
		set: func(c *Config, v string) error { c.Filter.PolicyKeyword = v; return nil },
	},
	"filter.policy_max_len": intKey(func(c *Config) *int { return &c.Filter.PolicyMaxLen }),
	"explain.top_n":         intKey(func(c *Config) *int { return &c.Explain.TopN }),
}

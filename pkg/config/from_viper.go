package config

import "github.com/spf13/viper"

// FromViper materializes a Config from the viper precedence chain
// (flags > env > config file > defaults). Reading keys explicitly keeps
// the dotted-key names as the single contract between layers.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			VectorProvider: v.GetString("storage.vector_provider"),
			VectorPath:     v.GetString("storage.vector_path"),
			AuditProvider:  v.GetString("storage.audit_provider"),
			AuditPath:      v.GetString("storage.audit_path"),
			AuditConn:      v.GetString("storage.audit_conn"),
		},
		API: APIConfig{
			Listen:    v.GetString("api.listen"),
			Key:       v.GetString("api.key"),
			RateLimit: v.GetInt("api.rate_limit"),
		},
		Embedding: EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			Dimensions: v.GetUint("embedding.dimensions"),
		},
		LLM: LLMConfig{
			Provider:  v.GetString("llm.provider"),
			Target:    v.GetString("llm.target"),
			Model:     v.GetString("llm.model"),
			MaxTokens: v.GetInt("llm.max_tokens"),
		},
		Events: EventsConfig{
			Enabled: v.GetBool("events.enabled"),
			Brokers: v.GetStringSlice("events.brokers"),
			Topic:   v.GetString("events.topic"),
		},
		Chunking: ChunkingConfig{
			Window:  v.GetInt("chunking.window"),
			Overlap: v.GetInt("chunking.overlap"),
		},
		Filter: FilterConfig{
			PolicyKeyword: v.GetString("filter.policy_keyword"),
			PolicyMaxLen:  v.GetInt("filter.policy_max_len"),
		},
		Explain: ExplainConfig{
			TopN: v.GetInt("explain.top_n"),
		},
	}
}

package config

const (
	defaultProviderTarget = "http://localhost:11434"

	defaultAPIListen    = ":8081"
	defaultAPIRateLimit = 60

	defaultVectorProvider = "auto"
	defaultAuditProvider  = "sqlite"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingModel      = "embeddinggemma"
	defaultEmbeddingDimensions = 768

	defaultLLMProvider  = "ollama"
	defaultLLMModel     = "llama3.2"
	defaultLLMMaxTokens = 512

	defaultEventsTopic = "miner.query.audited"

	defaultChunkWindow  = 1000
	defaultChunkOverlap = 200

	defaultPolicyKeyword = "confidential"
	defaultPolicyMaxLen  = 1000

	defaultExplainTopN = 5
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			VectorProvider: defaultVectorProvider,
			AuditProvider:  defaultAuditProvider,
		},
		API: APIConfig{
			Listen:    defaultAPIListen,
			RateLimit: defaultAPIRateLimit,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultProviderTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		LLM: LLMConfig{
			Provider:  defaultLLMProvider,
			Target:    defaultProviderTarget,
			Model:     defaultLLMModel,
			MaxTokens: defaultLLMMaxTokens,
		},
		Events: EventsConfig{
			Topic: defaultEventsTopic,
		},
		Chunking: ChunkingConfig{
			Window:  defaultChunkWindow,
			Overlap: defaultChunkOverlap,
		},
		Filter: FilterConfig{
			PolicyKeyword: defaultPolicyKeyword,
			PolicyMaxLen:  defaultPolicyMaxLen,
		},
		Explain: ExplainConfig{
			TopN: defaultExplainTopN,
		},
	}
}

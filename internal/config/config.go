package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ChunkingConfig configures how documents are split into chunks.
// Sizes are in tokens; internally one token is estimated at four characters.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	MinChunkSize int `yaml:"min_chunk_size"`
}

// ContextualConfig configures the contextual prefix attached to each chunk.
// The include flags are pointers so that an absent key and an explicit
// false can be told apart when defaulting.
type ContextualConfig struct {
	IncludeSource    *bool  `yaml:"include_source"`
	IncludeChapter   *bool  `yaml:"include_chapter"`
	IncludeSection   *bool  `yaml:"include_section"`
	IncludePage      *bool  `yaml:"include_page"`
	Separator        string `yaml:"separator"`
	MaxContextLength int    `yaml:"max_context_length"`
}

// EmbedderConfig selects and configures the embedding provider.
type EmbedderConfig struct {
	Provider  string `yaml:"provider"` // "ollama" or "openai"; empty for auto-detect
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	CacheSize int    `yaml:"cache_size"`
	BatchSize int    `yaml:"batch_size"`
}

// QdrantConfig contains connection details for the Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// StorageConfig configures the SQLite ingestion catalog.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Config is the root application configuration structure.
type Config struct {
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Contextual ContextualConfig `yaml:"contextual"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Qdrant     QdrantConfig     `yaml:"qdrant"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// QdrantTimeout returns the configured Qdrant timeout as a duration.
func (c *Config) QdrantTimeout() time.Duration {
	return time.Duration(c.Qdrant.TimeoutSecs) * time.Second
}

// APIKey resolves the embedder API key from the configured environment variable.
func (e *EmbedderConfig) APIKey() string {
	if e.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(e.APIKeyEnv)
}

// Load reads a config from the given path. If the file does not exist,
// returns defaults. A .env file in the working directory is loaded first
// so that env overrides and API keys work without exporting them.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docchunk/config.yaml.
// If neither exists, defaults are returned without writing a file.
func LoadDefault() (*Config, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg, err := Load(cwdPath) // falls through to defaults
	return cfg, "", err
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docchunk", "config.yaml"), nil
}

// Default returns the full default configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 512
	}
	if cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking.ChunkOverlap = 100
	}
	if cfg.Chunking.MinChunkSize == 0 {
		cfg.Chunking.MinChunkSize = 100
	}
	if cfg.Contextual.Separator == "" {
		cfg.Contextual.Separator = "---"
	}
	if cfg.Contextual.IncludeSource == nil {
		cfg.Contextual.IncludeSource = boolPtr(true)
	}
	if cfg.Contextual.IncludeChapter == nil {
		cfg.Contextual.IncludeChapter = boolPtr(true)
	}
	if cfg.Contextual.IncludeSection == nil {
		cfg.Contextual.IncludeSection = boolPtr(true)
	}
	if cfg.Contextual.IncludePage == nil {
		cfg.Contextual.IncludePage = boolPtr(false)
	}
	if cfg.Contextual.MaxContextLength == 0 {
		cfg.Contextual.MaxContextLength = 200
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedder.CacheSize == 0 {
		cfg.Embedder.CacheSize = 1000
	}
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = 32
	}
	if cfg.Qdrant.URL == "" {
		cfg.Qdrant.URL = "http://localhost:6333"
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "docchunk"
	}
	if cfg.Qdrant.TimeoutSecs == 0 {
		cfg.Qdrant.TimeoutSecs = 30
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "docchunk.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Environment variable names recognized as overrides.
const (
	EnvChunkSize    = "DOCCHUNK_CHUNK_SIZE"
	EnvChunkOverlap = "DOCCHUNK_CHUNK_OVERLAP"
	EnvMinChunkSize = "DOCCHUNK_MIN_CHUNK_SIZE"
	EnvProvider     = "DOCCHUNK_EMBEDDING_PROVIDER"
	EnvOllamaURL    = "OLLAMA_URL"
	EnvQdrantURL    = "QDRANT_URL"
	EnvQdrantAPIKey = "QDRANT_API_KEY"
	EnvDatabasePath = "DOCCHUNK_DB_PATH"
	EnvLogLevel     = "DOCCHUNK_LOG_LEVEL"
)

func applyEnvOverrides(cfg *Config) {
	if v, ok := envInt(EnvChunkSize); ok {
		cfg.Chunking.ChunkSize = v
	}
	if v, ok := envInt(EnvChunkOverlap); ok {
		cfg.Chunking.ChunkOverlap = v
	}
	if v, ok := envInt(EnvMinChunkSize); ok {
		cfg.Chunking.MinChunkSize = v
	}
	if v := os.Getenv(EnvProvider); v != "" {
		cfg.Embedder.Provider = v
	}
	if v := os.Getenv(EnvOllamaURL); v != "" && cfg.Embedder.BaseURL == "" {
		cfg.Embedder.BaseURL = v
	}
	if v := os.Getenv(EnvQdrantURL); v != "" {
		cfg.Qdrant.URL = v
	}
	if v := os.Getenv(EnvQdrantAPIKey); v != "" {
		cfg.Qdrant.APIKey = v
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		cfg.Storage.DatabasePath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
}

func boolPtr(b bool) *bool { return &b }

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Package config loads lyricmind settings from defaults, a TOML file, a .env
// file and LYRICMIND_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/poiesic/lyricmind/ai"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "lyricmind.toml"

// ErrInvalidValue indicates an environment variable that could not be parsed.
var ErrInvalidValue = errors.New("invalid config value")

type Config struct {
	Database    DatabaseConfig    `toml:"database"`
	Dataset     DatasetConfig     `toml:"dataset"`
	Server      ServerConfig      `toml:"server"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	VectorStore VectorStoreConfig `toml:"vectorstore"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// DatasetConfig locates the CSV files named by bulk requests.
type DatasetConfig struct {
	Dir string `toml:"dir"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type EmbeddingConfig struct {
	Host   string `toml:"host"`
	Model  string `toml:"model"`
	APIKey string `toml:"api_key"`
}

type VectorStoreConfig struct {
	BatchSize int `toml:"batch_size"`
	PoolSize  int `toml:"pool_size"`
	// MaxTokens caps document length in cl100k_base tokens. The encoding is
	// fetched once and cached under TIKTOKEN_CACHE_DIR; 0 disables truncation.
	MaxTokens     int     `toml:"max_tokens"`
	MinSimilarity float32 `toml:"min_similarity"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	embedding := ai.DefaultConfig()
	return Config{
		Database:  DatabaseConfig{Path: "lyricmind.db"},
		Dataset:   DatasetConfig{Dir: "."},
		Server:    ServerConfig{Addr: ":8080"},
		Embedding: EmbeddingConfig{Host: embedding.Host, Model: embedding.Model, APIKey: embedding.APIKey},
		VectorStore: VectorStoreConfig{
			BatchSize:     32,
			PoolSize:      4,
			MaxTokens:     2048,
			MinSimilarity: 0.6,
		},
	}
}

// Load reads config: defaults -> TOML file -> .env file -> env vars (env wins).
// A missing TOML or .env file is not an error. An empty path means
// DefaultPath; an empty envPath skips the .env file.
func Load(path, envPath string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to load .env file %s: %w", envPath, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Database.Path, "LYRICMIND_DB_PATH")
	// RESOURCES_PATH is accepted for existing deployments.
	setString(&cfg.Dataset.Dir, "RESOURCES_PATH")
	setString(&cfg.Dataset.Dir, "LYRICMIND_DATA_DIR")
	setString(&cfg.Server.Addr, "LYRICMIND_SERVER_ADDR")
	setString(&cfg.Embedding.Host, "LYRICMIND_EMBEDDING_HOST")
	setString(&cfg.Embedding.Model, "LYRICMIND_EMBEDDING_MODEL")
	setString(&cfg.Embedding.APIKey, "LYRICMIND_EMBEDDING_API_KEY")

	if err := setInt(&cfg.VectorStore.BatchSize, "LYRICMIND_BATCH_SIZE"); err != nil {
		return err
	}
	if err := setInt(&cfg.VectorStore.PoolSize, "LYRICMIND_POOL_SIZE"); err != nil {
		return err
	}
	if err := setInt(&cfg.VectorStore.MaxTokens, "LYRICMIND_MAX_TOKENS"); err != nil {
		return err
	}
	if v := os.Getenv("LYRICMIND_MIN_SIMILARITY"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("%w: LYRICMIND_MIN_SIMILARITY=%q", ErrInvalidValue, v)
		}
		cfg.VectorStore.MinSimilarity = float32(f)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	*dst = n
	return nil
}

// AI returns the embedding settings as a normalized ai.Config.
func (c Config) AI() *ai.Config {
	cfg := ai.NewConfig(
		ai.WithHost(c.Embedding.Host),
		ai.WithModel(c.Embedding.Model),
		ai.WithAPIKey(c.Embedding.APIKey),
	)
	cfg.Normalize()
	return cfg
}

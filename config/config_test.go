package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "lyricmind.db", cfg.Database.Path)
	assert.Equal(t, ".", cfg.Dataset.Dir)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "embeddinggemma", cfg.Embedding.Model)
	assert.Equal(t, 32, cfg.VectorStore.BatchSize)
	assert.Equal(t, float32(0.6), cfg.VectorStore.MinSimilarity)
}

func TestLoad_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.toml"), filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "lyricmind.toml", `
[database]
path = "/var/lib/lyricmind"

[dataset]
dir = "/srv/songs"

[embedding]
host = "http://embedder:8000"
model = "nomic-embed-text"

[vectorstore]
batch_size = 8
min_similarity = 0.75
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/lyricmind", cfg.Database.Path)
	assert.Equal(t, "/srv/songs", cfg.Dataset.Dir)
	assert.Equal(t, "http://embedder:8000", cfg.Embedding.Host)
	assert.Equal(t, "nomic-embed-text", cfg.Embedding.Model)
	assert.Equal(t, 8, cfg.VectorStore.BatchSize)
	assert.Equal(t, float32(0.75), cfg.VectorStore.MinSimilarity)

	// Defaults preserved
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 4, cfg.VectorStore.PoolSize)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeFile(t, "bad.toml", "[database\npath = ")

	_, err := Load(path, "")
	assert.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeFile(t, "lyricmind.toml", "[server]\naddr = \":9000\"\n")

	t.Setenv("LYRICMIND_SERVER_ADDR", ":7000")
	t.Setenv("LYRICMIND_EMBEDDING_API_KEY", "secret")
	t.Setenv("LYRICMIND_POOL_SIZE", "16")
	t.Setenv("LYRICMIND_MIN_SIMILARITY", "0.5")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "secret", cfg.Embedding.APIKey)
	assert.Equal(t, 16, cfg.VectorStore.PoolSize)
	assert.Equal(t, float32(0.5), cfg.VectorStore.MinSimilarity)
}

func TestLoad_ResourcesPath(t *testing.T) {
	t.Setenv("RESOURCES_PATH", "/opt/resources")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"), "")
	require.NoError(t, err)
	assert.Equal(t, "/opt/resources", cfg.Dataset.Dir)

	t.Setenv("LYRICMIND_DATA_DIR", "/opt/data")
	cfg, err = Load(filepath.Join(t.TempDir(), "none.toml"), "")
	require.NoError(t, err)
	assert.Equal(t, "/opt/data", cfg.Dataset.Dir, "LYRICMIND_DATA_DIR wins")
}

func TestLoad_DotEnv(t *testing.T) {
	envPath := writeFile(t, ".env", "LYRICMIND_DB_PATH=/tmp/from-dotenv\nLYRICMIND_EMBEDDING_MODEL=dotenv-model\n")
	// Set before loading so t.Setenv restores the variables afterwards.
	t.Setenv("LYRICMIND_DB_PATH", "")
	t.Setenv("LYRICMIND_EMBEDDING_MODEL", "from-env")
	os.Unsetenv("LYRICMIND_DB_PATH")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"), envPath)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-dotenv", cfg.Database.Path)
	assert.Equal(t, "from-env", cfg.Embedding.Model, "existing environment wins over .env")
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"LYRICMIND_BATCH_SIZE", "lots"},
		{"LYRICMIND_MAX_TOKENS", "1.5"},
		{"LYRICMIND_MIN_SIMILARITY", "high"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load(filepath.Join(t.TempDir(), "none.toml"), "")
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestConfig_AI(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Host = "http://localhost:8000/"
	cfg.Embedding.APIKey = ""

	aiCfg := cfg.AI()
	assert.Equal(t, "http://localhost:8000/v1", aiCfg.Host)
	assert.Equal(t, "embeddinggemma", aiCfg.Model)
	assert.Equal(t, "none", aiCfg.APIKey)
	assert.NoError(t, aiCfg.Validate())
}

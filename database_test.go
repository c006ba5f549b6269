package lyricmind

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/lyricmind/ai"
	"github.com/poiesic/lyricmind/ai/mock"
	"github.com/poiesic/lyricmind/core"
	"github.com/poiesic/lyricmind/ingestion"
	"github.com/poiesic/lyricmind/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.SongRepository())
		assert.NotNil(t, db.EmbeddingRepository())
		assert.NotNil(t, db.VectorStore())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
		assert.DirExists(t, tmpDir)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("error with invalid ai config", func(t *testing.T) {
		db, err := NewDatabase("", InMemory(), WithAIConfig(ai.NewConfig(ai.WithModel(""))))
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("error with invalid vector store option", func(t *testing.T) {
		db, err := NewDatabase("", InMemory(),
			WithEmbedder(mock.NewMockEmbedder()),
			WithVectorStoreOptions(vectorstore.WithMinSimilarity(2)))
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, db)

	// Close the database
	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase("", InMemory(), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := db.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})

	t.Run("can create reembedder", func(t *testing.T) {
		reembedder := db.NewReembedder(nil, nil)
		require.NotNil(t, reembedder)
	})
}

func TestDatabase_IngestSearchReembed(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	db, err := NewDatabase("", InMemory(), WithEmbedder(embedder))
	require.NoError(t, err)
	defer db.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "songs.csv"), []byte(
		"Artist,Title,Album,Year,Date,Lyric\n"+
			"Bob Dylan,Blowin' in the Wind,The Freewheelin',1963,1963-05-27,how many roads\n"+
			"Nina Simone,Feeling Good,I Put a Spell on You,1965,1965-06-01,birds flying high\n"+
			"Johnny Cash,Hurt,American IV,2002,2002-11-05,i hurt myself today\n"), 0644))

	ctx := context.Background()

	pipeline, err := db.NewIngestionPipeline(ingestion.WithDataDir(dir))
	require.NoError(t, err)

	resp, err := pipeline.EmbedBulk(ctx, ingestion.BulkRequest{FileName: "songs.csv"})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Embedded)

	searcher, err := db.NewSearcher()
	require.NoError(t, err)

	query := ingestion.NewDocument(&core.Song{Title: "Hurt", Artist: "Johnny Cash", Lyrics: "i hurt myself today"}).PageContent
	results, err := searcher.FindSimilar(ctx, query, 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Hurt", results[0].Song.Title)

	var progress bytes.Buffer
	processed, err := db.NewReembedder(nil, &progress).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, processed)

	count, err := db.EmbeddingRepository().CountEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "reembedding replaces embeddings")
}

package prodsearch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCatalog(t *testing.T) {
	t.Run("create new catalog", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_catalog")
		catalog, err := OpenCatalog(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, catalog)
		defer catalog.Close()

		// Verify components are initialized
		assert.NotNil(t, catalog.ProductRepository())
		assert.NotNil(t, catalog.CheckpointRepository())
		assert.NotNil(t, catalog.backend)
		assert.NotNil(t, catalog.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to open a catalog at a file path instead of a directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		catalog, err := OpenCatalog(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, catalog)
	})
}

func TestCatalog_Close(t *testing.T) {
	catalog, err := OpenCatalog(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, catalog)

	err = catalog.Close()
	assert.NoError(t, err)
}

func TestCatalog_FactoryMethods(t *testing.T) {
	catalog, err := OpenCatalog(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, catalog)
	defer catalog.Close()

	t.Run("can create index pipeline", func(t *testing.T) {
		pipeline, err := catalog.NewIndexPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create reembedder", func(t *testing.T) {
		reembedder, err := catalog.NewReembedder(nil, nil)
		require.NoError(t, err)
		require.NotNil(t, reembedder)
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := catalog.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})

	t.Run("can create answerer", func(t *testing.T) {
		answerer, err := catalog.NewAnswerer()
		require.NoError(t, err)
		require.NotNil(t, answerer)
	})
}

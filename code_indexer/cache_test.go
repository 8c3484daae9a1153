package code_indexer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheManager_BasicOperations(t *testing.T) {
	tempDir := t.TempDir()

	cacheManager, err := NewCacheManager(filepath.Join(tempDir, "cache"))
	require.NoError(t, err)
	require.NotNil(t, cacheManager)

	testFile := filepath.Join(tempDir, "test.txt")
	testContent := []byte("test content")
	require.NoError(t, os.WriteFile(testFile, testContent, 0644))

	// Not cached initially.
	content, found := cacheManager.GetFileContentCache(testFile)
	assert.False(t, found)
	assert.Nil(t, content)

	require.NoError(t, cacheManager.SetFileContentCache(testFile, testContent))

	cachedContent, found := cacheManager.GetFileContentCache(testFile)
	assert.True(t, found)
	assert.Equal(t, testContent, cachedContent)
}

func TestCacheManager_InvalidatesOnFileChange(t *testing.T) {
	tempDir := t.TempDir()

	cacheManager, err := NewCacheManager(filepath.Join(tempDir, "cache"))
	require.NoError(t, err)

	testFile := filepath.Join(tempDir, "test.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("before"), 0644))
	require.NoError(t, cacheManager.SetFileContentCache(testFile, []byte("before")))

	// Rewrite with different size and a bumped mtime.
	require.NoError(t, os.WriteFile(testFile, []byte("after edit"), 0644))
	require.NoError(t, os.Chtimes(testFile, time.Now().Add(time.Second), time.Now().Add(time.Second)))

	_, found := cacheManager.GetFileContentCache(testFile)
	assert.False(t, found)
}

func TestCacheManager_InvalidatesOnDeletedSource(t *testing.T) {
	tempDir := t.TempDir()

	cacheManager, err := NewCacheManager(filepath.Join(tempDir, "cache"))
	require.NoError(t, err)

	testFile := filepath.Join(tempDir, "gone.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("content"), 0644))
	require.NoError(t, cacheManager.SetFileContentCache(testFile, []byte("content")))
	require.NoError(t, os.Remove(testFile))

	_, found := cacheManager.GetFileContentCache(testFile)
	assert.False(t, found)
}

func TestCacheManager_ClearAndStats(t *testing.T) {
	tempDir := t.TempDir()

	cacheManager, err := NewCacheManager(filepath.Join(tempDir, "cache"))
	require.NoError(t, err)

	for _, name := range []string{"a.txt", "b.txt"} {
		path := filepath.Join(tempDir, name)
		require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
		require.NoError(t, cacheManager.SetFileContentCache(path, []byte("data")))
	}

	files, totalSize, err := cacheManager.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, files)
	assert.Greater(t, totalSize, int64(0))

	require.NoError(t, cacheManager.Clear())

	files, _, err = cacheManager.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, files)
}

func TestIndex_UsesCache(t *testing.T) {
	tempDir := t.TempDir()

	cacheManager, err := NewCacheManager(filepath.Join(tempDir, ".companion", "cache"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "main.go"), []byte("package main\n"), 0644))

	first, err := Index(tempDir, Options{Cache: cacheManager, ExcludeDirs: []string{".companion"}})
	require.NoError(t, err)
	second, err := Index(tempDir, Options{Cache: cacheManager, ExcludeDirs: []string{".companion"}})
	require.NoError(t, err)

	require.Len(t, second.Files, 1)
	assert.Equal(t, first.Files[0].Content, second.Files[0].Content)
	assert.Equal(t, first.TotalTokensEstimate, second.TotalTokensEstimate)
}

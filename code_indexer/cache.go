package code_indexer

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zeebo/xxh3"
)

// cacheEntry is one gob-encoded cache record with the metadata needed
// for invalidation.
type cacheEntry struct {
	Data     []byte
	FileSize int64
	ModTime  time.Time
}

// CacheManager caches file contents between indexing passes so a
// re-index of an unchanged tree avoids re-reading every file. Entries
// are invalidated when the source file's size or modification time
// changes.
type CacheManager struct {
	cacheDir string
	mutex    sync.RWMutex
}

// NewCacheManager creates a cache manager rooted at cacheDir. If
// cacheDir is empty it defaults to ".companion/cache" under the current
// working directory.
func NewCacheManager(cacheDir string) (*CacheManager, error) {
	if cacheDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		cacheDir = filepath.Join(cwd, ".companion", "cache")
	}

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &CacheManager{cacheDir: cacheDir}, nil
}

// cacheKey derives the cache file name for a source path.
func (cm *CacheManager) cacheKey(filePath string) string {
	return fmt.Sprintf("%x.cache", xxh3.HashString(filePath))
}

// GetFileContentCache returns the cached content for filePath, or
// (nil, false) when absent or stale.
func (cm *CacheManager) GetFileContentCache(filePath string) ([]byte, bool) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	cachePath := filepath.Join(cm.cacheDir, cm.cacheKey(filePath))
	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}

	var entry cacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		return nil, false
	}

	info, err := os.Stat(filePath)
	if err != nil || info.Size() != entry.FileSize || !info.ModTime().Equal(entry.ModTime) {
		// Stale: source changed or vanished.
		os.Remove(cachePath)
		return nil, false
	}

	return entry.Data, true
}

// SetFileContentCache stores content for filePath.
func (cm *CacheManager) SetFileContentCache(filePath string, content []byte) error {
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", filePath, err)
	}

	entry := cacheEntry{
		Data:     content,
		FileSize: info.Size(),
		ModTime:  info.ModTime(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&entry); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	cachePath := filepath.Join(cm.cacheDir, cm.cacheKey(filePath))
	if err := os.WriteFile(cachePath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Clear removes every cache entry.
func (cm *CacheManager) Clear() error {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	entries, err := os.ReadDir(cm.cacheDir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".cache" {
			continue
		}
		if err := os.Remove(filepath.Join(cm.cacheDir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove cache entry %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Stats reports the number of cache entries and their total size in bytes.
func (cm *CacheManager) Stats() (files int, totalSize int64, err error) {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	entries, err := os.ReadDir(cm.cacheDir)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".cache" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files++
		totalSize += info.Size()
	}
	return files, totalSize, nil
}

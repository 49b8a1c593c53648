package code_snapshot

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/meysamhadeli/codesnap/code_snapshot/models"
	"github.com/spf13/afero"
	"github.com/zeebo/xxh3"
)

const cacheFileSuffix = ".cache"

// CacheEntry is the on-disk envelope of a cached project snapshot
type CacheEntry struct {
	Key       string
	Timestamp time.Time
	Snapshot  *models.ProjectSnapshot
}

// FileCache stores gob encoded entries, one file per key
type FileCache struct {
	fs       afero.Fs
	cacheDir string
	mutex    sync.RWMutex
}

// CacheManager keeps the manifests of previous gathers
type CacheManager struct {
	fileCache *FileCache
}

// DefaultCleanupOptions is the pruning applied every time the cache is opened.
func DefaultCleanupOptions() models.CacheCleanupOptions {
	return models.CacheCleanupOptions{
		MaxAge:   30 * 24 * time.Hour,
		MaxFiles: 200,
	}
}

// NewCacheManager creates a new cache manager instance.
// If cacheDir is empty, it defaults to ".cache" in the current working directory.
func NewCacheManager(fs afero.Fs, cacheDir string) (*CacheManager, error) {
	if cacheDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		cacheDir = filepath.Join(cwd, ".cache")
	}

	if err := fs.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cacheManager := &CacheManager{
		fileCache: &FileCache{
			fs:       fs,
			cacheDir: cacheDir,
		},
	}

	if _, err := cacheManager.SmartCleanupCache(DefaultCleanupOptions()); err != nil {
		return nil, err
	}

	return cacheManager, nil
}

// generateCacheKey creates a unique cache file name for a key
func (fc *FileCache) generateCacheKey(key string) string {
	return fmt.Sprintf("%016x%s", xxh3.HashString(key), cacheFileSuffix)
}

func (fc *FileCache) getCachePath(cacheKey string) string {
	return filepath.Join(fc.cacheDir, cacheKey)
}

func (fc *FileCache) readEntry(cachePath string) (*CacheEntry, error) {
	data, err := afero.ReadFile(fc.fs, cachePath)
	if err != nil {
		return nil, err
	}

	var entry CacheEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode cache entry %s: %w", cachePath, err)
	}
	return &entry, nil
}

// listEntries returns cache files, skipping directories and foreign files
func (fc *FileCache) listEntries() ([]os.FileInfo, error) {
	files, err := afero.ReadDir(fc.fs, fc.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var entries []os.FileInfo
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), cacheFileSuffix) {
			continue
		}
		entries = append(entries, file)
	}
	return entries, nil
}

// SetProjectSnapshot stores the manifest of a gather under key
func (cm *CacheManager) SetProjectSnapshot(key string, snapshot *models.ProjectSnapshot) error {
	cm.fileCache.mutex.Lock()
	defer cm.fileCache.mutex.Unlock()

	entry := CacheEntry{
		Key:       key,
		Timestamp: time.Now(),
		Snapshot:  snapshot,
	}

	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(entry); err != nil {
		return fmt.Errorf("failed to encode snapshot entry: %w", err)
	}

	cachePath := cm.fileCache.getCachePath(cm.fileCache.generateCacheKey(key))
	if err := afero.WriteFile(cm.fileCache.fs, cachePath, buffer.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write snapshot cache file: %w", err)
	}

	return nil
}

// GetProjectSnapshot retrieves the manifest stored under key
func (cm *CacheManager) GetProjectSnapshot(key string) (*models.ProjectSnapshot, bool) {
	cm.fileCache.mutex.RLock()
	defer cm.fileCache.mutex.RUnlock()

	cachePath := cm.fileCache.getCachePath(cm.fileCache.generateCacheKey(key))
	entry, err := cm.fileCache.readEntry(cachePath)
	if err != nil || entry.Snapshot == nil || entry.Key != key {
		return nil, false
	}

	return entry.Snapshot, true
}

// DeleteProjectSnapshot removes the manifest stored under key
func (cm *CacheManager) DeleteProjectSnapshot(key string) error {
	cm.fileCache.mutex.Lock()
	defer cm.fileCache.mutex.Unlock()

	cachePath := cm.fileCache.getCachePath(cm.fileCache.generateCacheKey(key))
	if err := cm.fileCache.fs.Remove(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// GetCacheStats returns storage statistics and the age of the newest manifest
func (cm *CacheManager) GetCacheStats() (map[string]interface{}, error) {
	cm.fileCache.mutex.RLock()
	files, err := cm.fileCache.listEntries()
	cm.fileCache.mutex.RUnlock()
	if err != nil {
		return nil, err
	}

	var totalSize int64
	var newest, oldest time.Time
	for _, file := range files {
		totalSize += file.Size()
		if file.ModTime().After(newest) {
			newest = file.ModTime()
		}
		if oldest.IsZero() || file.ModTime().Before(oldest) {
			oldest = file.ModTime()
		}
	}

	stats := map[string]interface{}{
		"cache_enabled": true,
		"cache_files":   len(files),
		"total_size":    totalSize,
		"cache_dir":     cm.fileCache.cacheDir,
	}
	if len(files) > 0 {
		stats["newest_entry"] = newest.Format(time.RFC3339)
		stats["oldest_entry"] = oldest.Format(time.RFC3339)
	}

	return stats, nil
}

// SmartCleanupCache removes old entries by age, then the oldest ones above MaxFiles
func (cm *CacheManager) SmartCleanupCache(options models.CacheCleanupOptions) (map[string]interface{}, error) {
	cm.fileCache.mutex.Lock()
	defer cm.fileCache.mutex.Unlock()

	files, err := cm.fileCache.listEntries()
	if err != nil {
		return nil, err
	}

	type fileInfo struct {
		path     string
		entryAge time.Time
	}

	fileInfos := make([]fileInfo, 0, len(files))
	for _, file := range files {
		cachePath := filepath.Join(cm.fileCache.cacheDir, file.Name())

		entryAge := file.ModTime()
		if entry, err := cm.fileCache.readEntry(cachePath); err == nil {
			entryAge = entry.Timestamp
		}
		fileInfos = append(fileInfos, fileInfo{path: cachePath, entryAge: entryAge})
	}

	// Oldest first
	sort.Slice(fileInfos, func(i, j int) bool {
		return fileInfos[i].entryAge.Before(fileInfos[j].entryAge)
	})

	var toDelete []string
	var deletedByAge, deletedByCount int

	kept := fileInfos
	if options.MaxAge > 0 {
		cutoff := time.Now().Add(-options.MaxAge)
		kept = kept[:0:0]
		for _, f := range fileInfos {
			if f.entryAge.Before(cutoff) {
				toDelete = append(toDelete, f.path)
				deletedByAge++
				continue
			}
			kept = append(kept, f)
		}
	}

	if options.MaxFiles > 0 && len(kept) > options.MaxFiles {
		excess := len(kept) - options.MaxFiles
		for _, f := range kept[:excess] {
			toDelete = append(toDelete, f.path)
			deletedByCount++
		}
	}

	actuallyDeleted := len(toDelete)
	if !options.DryRun {
		actuallyDeleted = 0
		for _, path := range toDelete {
			if err := cm.fileCache.fs.Remove(path); err == nil {
				actuallyDeleted++
			}
		}
	}

	return map[string]interface{}{
		"files_before_cleanup":    len(fileInfos),
		"files_marked_for_delete": len(toDelete),
		"files_actually_deleted":  actuallyDeleted,
		"deleted_by_age":          deletedByAge,
		"deleted_by_count":        deletedByCount,
		"dry_run":                 options.DryRun,
	}, nil
}

// ClearCache completely removes all cache entries
func (cm *CacheManager) ClearCache() error {
	cm.fileCache.mutex.Lock()
	defer cm.fileCache.mutex.Unlock()

	files, err := cm.fileCache.listEntries()
	if err != nil {
		return err
	}

	for _, file := range files {
		cachePath := filepath.Join(cm.fileCache.cacheDir, file.Name())
		if err := cm.fileCache.fs.Remove(cachePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete cache file %s: %w", file.Name(), err)
		}
	}

	return nil
}

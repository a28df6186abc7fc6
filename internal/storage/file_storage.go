// internal/storage/file_storage.go
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileStorage 提供按键值组织的JSON文档存储
// 每个文档是 BaseDir 下的一个 <collection>/<key>.json 文件
type FileStorage struct {
	BaseDir string

	// 并发控制
	fileLocks sync.Map // path -> *sync.RWMutex

	// 简单缓存
	cache        map[string]*CacheEntry
	cacheMutex   sync.RWMutex
	cacheExpiry  time.Duration
	maxCacheSize int
}

// CacheEntry 缓存条目
type CacheEntry struct {
	Data      []byte
	Timestamp time.Time
}

// NewFileStorage 创建文档存储服务
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}

	fs := &FileStorage{
		BaseDir:      baseDir,
		cache:        make(map[string]*CacheEntry),
		cacheExpiry:  5 * time.Minute,
		maxCacheSize: 100,
	}

	fs.startCacheCleanup()

	return fs, nil
}

// PushKey 生成一个新的文档键
func (fs *FileStorage) PushKey() string {
	return uuid.NewString()
}

// sanitizePathSegment 清除段中的路径分隔符和上级目录引用
// 集合名和键可能来自请求参数，不允许定位到集合目录之外
func sanitizePathSegment(segment string) string {
	segment = strings.ReplaceAll(segment, "..", "_")
	if segment == "" || segment == "." {
		return "_"
	}
	return segment
}

// collectionDir 返回集合目录的绝对路径，集合名可用"/"分层
func (fs *FileStorage) collectionDir(collection string) string {
	parts := strings.FieldsFunc(collection, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(parts) == 0 {
		parts = []string{"_"}
	}
	for i, part := range parts {
		parts[i] = sanitizePathSegment(part)
	}
	return filepath.Join(fs.BaseDir, filepath.Join(parts...))
}

// docPath 返回文档文件的绝对路径
func (fs *FileStorage) docPath(collection, key string) string {
	key = strings.ReplaceAll(key, "/", "_")
	key = strings.ReplaceAll(key, "\\", "_")
	return filepath.Join(fs.collectionDir(collection), sanitizePathSegment(key)+".json")
}

// 获取文件锁
func (fs *FileStorage) getFileLock(fullPath string) *sync.RWMutex {
	value, _ := fs.fileLocks.LoadOrStore(fullPath, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

// SaveDoc 将文档序列化为JSON并原子写入 <collection>/<key>.json
func (fs *FileStorage) SaveDoc(collection, key string, doc interface{}) error {
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	fullPath := fs.docPath(collection, key)
	fullDirPath := filepath.Dir(fullPath)

	lock := fs.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(fullDirPath, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	// 原子性文件写入
	tempPath := fullPath + ".tmp"

	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("保存临时文件失败: %w", err)
	}

	if err := os.Rename(tempPath, fullPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("保存文件失败: %w", err)
	}

	fs.invalidateCache(fullPath)

	return nil
}

// LoadDoc 读取并解析 <collection>/<key>.json
// 文档不存在时返回 os.ErrNotExist
func (fs *FileStorage) LoadDoc(collection, key string, v interface{}) error {
	fullPath := fs.docPath(collection, key)

	content, err := fs.readFile(fullPath)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("解析JSON失败: %w", err)
	}

	return nil
}

// DocExists 检查文档是否存在
func (fs *FileStorage) DocExists(collection, key string) bool {
	fullPath := fs.docPath(collection, key)
	_, err := os.Stat(fullPath)
	return err == nil
}

// DeleteDoc 删除文档，文档不存在时视为成功
func (fs *FileStorage) DeleteDoc(collection, key string) error {
	fullPath := fs.docPath(collection, key)

	lock := fs.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("删除文件失败: %w", err)
	}

	fs.invalidateCache(fullPath)

	return nil
}

// ListKeys 列出集合下的所有文档键
func (fs *FileStorage) ListKeys(collection string) ([]string, error) {
	fullPath := fs.collectionDir(collection)
	entries, err := os.ReadDir(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取目录失败: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}

	return keys, nil
}

// LoadAll 读取集合下的所有文档，按键返回
func (fs *FileStorage) LoadAll(collection string) (map[string]json.RawMessage, error) {
	keys, err := fs.ListKeys(collection)
	if err != nil {
		return nil, err
	}

	docs := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		fullPath := fs.docPath(collection, key)
		content, err := fs.readFile(fullPath)
		if err != nil {
			// 文档可能在遍历期间被删除
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		docs[key] = json.RawMessage(content)
	}

	return docs, nil
}

// DeleteCollection 删除集合及其全部文档
func (fs *FileStorage) DeleteCollection(collection string) error {
	fullPath := fs.collectionDir(collection)

	lock := fs.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.RemoveAll(fullPath); err != nil {
		return fmt.Errorf("删除目录失败: %w", err)
	}

	fs.removeCacheEntriesWithPrefix(fullPath)

	return nil
}

// readFile 读取文件，优先命中缓存
func (fs *FileStorage) readFile(fullPath string) ([]byte, error) {
	fs.cacheMutex.RLock()
	if entry, exists := fs.cache[fullPath]; exists {
		if time.Since(entry.Timestamp) < fs.cacheExpiry {
			fs.cacheMutex.RUnlock()
			return entry.Data, nil
		}
	}
	fs.cacheMutex.RUnlock()

	lock := fs.getFileLock(fullPath)
	lock.RLock()
	defer lock.RUnlock()

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, err
	}

	fs.updateCache(fullPath, content)

	return content, nil
}

// 缓存管理
func (fs *FileStorage) updateCache(path string, data []byte) {
	fs.cacheMutex.Lock()
	defer fs.cacheMutex.Unlock()

	fs.cache[path] = &CacheEntry{
		Data:      data,
		Timestamp: time.Now(),
	}

	// 简单的缓存大小控制
	if len(fs.cache) > fs.maxCacheSize {
		var oldestKey string
		var oldestTime time.Time

		for key, entry := range fs.cache {
			if oldestKey == "" || entry.Timestamp.Before(oldestTime) {
				oldestKey = key
				oldestTime = entry.Timestamp
			}
		}

		if oldestKey != "" {
			delete(fs.cache, oldestKey)
		}
	}
}

// removeCacheEntriesWithPrefix 移除指定前缀的缓存条目
func (fs *FileStorage) removeCacheEntriesWithPrefix(prefix string) {
	fs.cacheMutex.Lock()
	defer fs.cacheMutex.Unlock()

	for key := range fs.cache {
		if strings.HasPrefix(key, prefix) {
			delete(fs.cache, key)
		}
	}
}

// 开始缓存清理
func (fs *FileStorage) startCacheCleanup() {
	go func() {
		ticker := time.NewTicker(2 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			fs.cleanupExpiredCache()
			fs.enforceMaxCacheSize()
		}
	}()
}

// 清理过期缓存
func (fs *FileStorage) cleanupExpiredCache() {
	fs.cacheMutex.Lock()
	defer fs.cacheMutex.Unlock()

	now := time.Now()
	for path, entry := range fs.cache {
		if now.Sub(entry.Timestamp) > fs.cacheExpiry {
			delete(fs.cache, path)
		}
	}
}

// enforceMaxCacheSize 按时间淘汰最旧的缓存条目
func (fs *FileStorage) enforceMaxCacheSize() {
	fs.cacheMutex.Lock()
	defer fs.cacheMutex.Unlock()

	if len(fs.cache) <= fs.maxCacheSize {
		return
	}

	type cacheEntryWithTime struct {
		key       string
		timestamp time.Time
	}

	var entries []cacheEntryWithTime
	for key, entry := range fs.cache {
		entries = append(entries, cacheEntryWithTime{key: key, timestamp: entry.Timestamp})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].timestamp.Before(entries[j].timestamp)
	})

	removeCount := len(entries) - fs.maxCacheSize
	for i := 0; i < removeCount; i++ {
		delete(fs.cache, entries[i].key)
	}
}

// invalidateCache 清除指定路径的缓存
func (fs *FileStorage) invalidateCache(path string) {
	fs.cacheMutex.Lock()
	defer fs.cacheMutex.Unlock()

	delete(fs.cache, path)
}

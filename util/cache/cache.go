// Package cache is a small JSON file backed key value store. The engine uses
// it to remember the last good answer of lookups that may later be
// unavailable.
package cache

import (
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type entry struct {
	Value     string `json:"value"`
	UpdatedAt int64  `json:"updated_at"`
}

type cacheFile struct {
	Data map[string]entry `json:"data"`
}

type FileCache struct {
	path string
	mu   sync.Mutex
	file *cacheFile
}

// DefaultPath is ~/.feedme/cache.json, or a file in the temp dir when the
// home directory is unknown.
func DefaultPath() string {
	usr, err := user.Current()
	if err != nil {
		return filepath.Join(os.TempDir(), "feedme-cache.json")
	}
	return filepath.Join(usr.HomeDir, ".feedme", "cache.json")
}

func New(path string) *FileCache {
	return &FileCache{path: path}
}

func (c *FileCache) load() *cacheFile {
	if c.file != nil {
		return c.file
	}
	c.file = &cacheFile{Data: map[string]entry{}}
	content, err := os.ReadFile(c.path)
	if err != nil {
		// a missing or unreadable cache starts empty
		return c.file
	}
	if err := json.Unmarshal(content, c.file); err != nil || c.file.Data == nil {
		c.file = &cacheFile{Data: map[string]entry{}}
	}
	return c.file
}

func (c *FileCache) persist() error {
	jsonData, err := json.MarshalIndent(c.file, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(c.path, jsonData, 0644)
}

// Get looks key up ignoring case.
func (c *FileCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.load().Data[strings.ToLower(key)]
	if !found {
		return "", false
	}
	return e.Value, true
}

// Set stores value and writes the whole cache back to disk.
func (c *FileCache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.load().Data[strings.ToLower(key)] = entry{Value: value, UpdatedAt: time.Now().Unix()}
	return c.persist()
}

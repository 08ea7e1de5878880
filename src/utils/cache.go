package utils

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// CacheHandlerI abstracts the short-lived cache in front of the rate
// pipeline. Implemented in-memory here and by redis_utils.RedisHandler.
type CacheHandlerI interface {
	Get(key string, result interface{}) error
	Set(key string, value interface{}, expiration time.Duration) error
	Delete(key string) error
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCacheHandler is a process-local CacheHandlerI with passive
// time-based expiry. Values are stored serialized so Get/Set behave the
// same as the Redis-backed handler.
type MemoryCacheHandler struct {
	entries map[string]memoryEntry
	mutex   sync.RWMutex
}

func NewMemoryCacheHandler() *MemoryCacheHandler {
	return &MemoryCacheHandler{
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryCacheHandler) Set(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize value: %w", err)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.entries[key] = memoryEntry{
		data:      data,
		expiresAt: time.Now().Add(expiration),
	}
	return nil
}

func (m *MemoryCacheHandler) Get(key string, result interface{}) error {
	m.mutex.RLock()
	entry, ok := m.entries[key]
	m.mutex.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return fmt.Errorf("key does not exist: %s", key)
	}
	return json.Unmarshal(entry.data, result)
}

func (m *MemoryCacheHandler) Delete(key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.entries, key)
	return nil
}

package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryItem struct {
	Value      []byte
	Expiration int64
}

// Memory es el backend en proceso, usado cuando no hay Redis configurado
type Memory struct {
	items map[string]memoryItem
	mu    sync.RWMutex
}

// NewMemory crea el backend y limpia items expirados cada cleanupInterval hasta que ctx termine
func NewMemory(ctx context.Context, cleanupInterval time.Duration) *Memory {
	m := &Memory{items: make(map[string]memoryItem)}
	if cleanupInterval > 0 {
		go m.cleanupExpired(ctx, cleanupInterval)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, found := m.items[key]
	if !found {
		return nil, false, nil
	}

	// Verificar si expiró
	if time.Now().UnixNano() > item.Expiration {
		return nil, false, nil
	}
	return item.Value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = memoryItem{
		Value:      value,
		Expiration: time.Now().Add(ttl).UnixNano(),
	}
	return nil
}

func (m *Memory) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

// Size retorna el número de items en caché
func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory) cleanupExpired(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			now := time.Now().UnixNano()
			for key, item := range m.items {
				if now > item.Expiration {
					delete(m.items, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Backend guarda valores serializados con expiración
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

type Cache struct {
	backend Backend
	ttl     time.Duration
}

func New(backend Backend, defaultTTL time.Duration) *Cache {
	return &Cache{backend: backend, ttl: defaultTTL}
}

// Marshal serializa y guarda en caché
func (c *Cache) Marshal(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.backend.Set(ctx, key, data, c.ttl)
}

// Unmarshal obtiene y deserializa del caché
func (c *Cache) Unmarshal(ctx context.Context, key string, target any) (bool, error) {
	data, found, err := c.backend.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}

	if err := json.Unmarshal(data, target); err != nil {
		return false, err
	}
	return true, nil
}

// Invalidate elimina todas las claves que empiecen con un prefijo
func (c *Cache) Invalidate(ctx context.Context, prefix string) error {
	return c.backend.DeleteByPrefix(ctx, prefix)
}

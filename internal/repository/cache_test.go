package repository

import (
	"context"
	"errors"
	"testing"
)

// memCache is an in-memory Cache for exercising the read-through helpers.
type memCache struct {
	data    map[string]interface{}
	deleted []string
	failGet bool
}

func newMemCache() *memCache { return &memCache{data: map[string]interface{}{}} }

func (m *memCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	if m.failGet {
		return false, errors.New("connection refused")
	}
	v, ok := m.data[key]
	if !ok {
		return false, nil
	}
	switch d := dest.(type) {
	case *map[string]string:
		*d = v.(map[string]string)
	}
	return true, nil
}

func (m *memCache) Set(_ context.Context, key string, value interface{}) error {
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

type countingSettings struct {
	calls  int
	values map[string]string
}

func (s *countingSettings) All(context.Context) (map[string]string, error) {
	s.calls++
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out, nil
}

func (s *countingSettings) Upsert(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

func TestCachedSettingRepository_ReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	inner := &countingSettings{values: map[string]string{"tax_rate": "10"}}
	cache := newMemCache()
	repo := NewCachedSettingRepository(inner, cache)

	for i := 0; i < 3; i++ {
		got, err := repo.All(ctx)
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if got["tax_rate"] != "10" {
			t.Fatalf("tax_rate = %q", got["tax_rate"])
		}
	}
	if inner.calls != 1 {
		t.Errorf("store hit %d times, want 1", inner.calls)
	}

	if err := repo.Upsert(ctx, "tax_rate", "8"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if len(cache.deleted) != 1 || cache.deleted[0] != cacheKeySettings {
		t.Errorf("deleted = %v, want [%s]", cache.deleted, cacheKeySettings)
	}

	got, _ := repo.All(ctx)
	if got["tax_rate"] != "8" || inner.calls != 2 {
		t.Errorf("after upsert tax_rate = %q, calls = %d", got["tax_rate"], inner.calls)
	}
}

func TestCachedSettingRepository_CacheErrorFallsBackToStore(t *testing.T) {
	inner := &countingSettings{values: map[string]string{"min_order_amount": "50"}}
	cache := newMemCache()
	cache.failGet = true

	got, err := NewCachedSettingRepository(inner, cache).All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if got["min_order_amount"] != "50" {
		t.Errorf("min_order_amount = %q", got["min_order_amount"])
	}
}

func TestNopCache(t *testing.T) {
	var c Cache = NopCache{}
	var dest []int
	hit, err := c.Get(context.Background(), "k", &dest)
	if hit || err != nil {
		t.Errorf("hit = %v, err = %v", hit, err)
	}
}

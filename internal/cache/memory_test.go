// Copyright (c) 2025-2026 Fortunada Cultura
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	c := newTestCache(t)

	_, err := c.Get(context.Background(), "absent")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(absent) = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	if err := c.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expired Get = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Error("deleted key should miss")
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := c.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Error("cleared key should miss")
	}
}

func TestMemoryCacheClosed(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	_ = c.Close()

	if _, err := c.Get(context.Background(), "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close = %v, want ErrCacheClosed", err)
	}
	if err := c.Set(context.Background(), "k", nil, 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set after Close = %v, want ErrCacheClosed", err)
	}
}

func TestTypedCache(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	type lines struct {
		Values []string `json:"values"`
	}

	tc := NewTypedCache[lines](c, time.Minute)

	if _, ok := tc.Get(ctx, "k"); ok {
		t.Fatal("empty cache should miss")
	}

	want := lines{Values: []string{"a", "b"}}
	if err := tc.Set(ctx, "k", &want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := tc.Get(ctx, "k")
	if !ok {
		t.Fatal("Get should hit")
	}
	if len(got.Values) != 2 || got.Values[0] != "a" {
		t.Errorf("Get = %+v", got)
	}
}

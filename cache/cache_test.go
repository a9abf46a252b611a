package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func counting(calls *int32) Loader {
	return func(ctx context.Context, key string) ([]byte, error) {
		atomic.AddInt32(calls, 1)
		if key == "missing" {
			return nil, errors.New("missing")
		}
		return []byte("value of " + key), nil
	}
}

func TestNullCache(t *testing.T) {
	var calls int32
	c, err := NewCacheFromConfig("test-null", 0, counting(&calls))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(NullCache); !ok {
		t.Fatalf("got %T want NullCache", c)
	}

	for i := 0; i < 3; i++ {
		data, err := c.Get(context.Background(), "a")
		if err != nil || string(data) != "value of a" {
			t.Errorf("Get: got (%q, %v)", data, err)
		}
	}
	if calls != 3 {
		t.Errorf("loader calls: got %d want 3", calls)
	}
}

func TestGroupCache(t *testing.T) {
	var calls int32
	c, err := NewCacheFromConfig("test-group", 1<<20, counting(&calls))
	if err != nil {
		t.Fatal(err)
	}
	gc, ok := c.(*GroupCache)
	if !ok {
		t.Fatalf("got %T want *GroupCache", c)
	}

	for i := 0; i < 3; i++ {
		data, err := gc.Get(context.Background(), "a")
		if err != nil || string(data) != "value of a" {
			t.Errorf("Get: got (%q, %v)", data, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader calls: got %d want 1", calls)
	}
	if gc.Stats().Items != 1 {
		t.Errorf("cached items: got %d want 1", gc.Stats().Items)
	}

	if _, err := gc.Get(context.Background(), "missing"); err == nil {
		t.Error("loader errors should be returned")
	}

	if _, err := NewGroupCache("test-group", 1<<20, counting(&calls)); err == nil {
		t.Error("a duplicate group should be rejected")
	}
}

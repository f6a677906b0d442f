package rediscache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
	"github.com/X1ag/ShuttleScheduler/internal/logging"
)

type fakeKV struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func TestNameCacheStoresResolvedNames(t *testing.T) {
	kv := newFakeKV()
	calls := 0
	next := domain.NameResolverFunc(func(_ context.Context, id string) (string, error) {
		calls++
		return "Ann", nil
	})
	c := NewNameCache(kv, next, time.Hour, logging.Discard())

	for i := 0; i < 3; i++ {
		name, err := c.DisplayName(context.Background(), "42")
		if err != nil || name != "Ann" {
			t.Fatalf("DisplayName = %q, %v", name, err)
		}
	}
	if calls != 1 {
		t.Errorf("resolver called %d times, want 1", calls)
	}
	if kv.ttls["shuttle:name:42"] != time.Hour {
		t.Errorf("ttl = %v", kv.ttls["shuttle:name:42"])
	}
}

func TestNameCacheBypassesBrokenRedis(t *testing.T) {
	kv := newFakeKV()
	kv.getErr = errors.New("connection refused")
	c := NewNameCache(kv, domain.NameResolverFunc(func(context.Context, string) (string, error) {
		return "Bob", nil
	}), time.Hour, logging.Discard())

	if name, err := c.DisplayName(context.Background(), "7"); err != nil || name != "Bob" {
		t.Errorf("DisplayName = %q, %v", name, err)
	}
}

func TestNameCacheDoesNotCacheFailures(t *testing.T) {
	kv := newFakeKV()
	c := NewNameCache(kv, domain.NameResolverFunc(func(context.Context, string) (string, error) {
		return "", domain.ErrUserNotFound
	}), time.Hour, logging.Discard())

	if _, err := c.DisplayName(context.Background(), "7"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("got %v", err)
	}
	if len(kv.data) != 0 {
		t.Errorf("failure cached: %v", kv.data)
	}
}

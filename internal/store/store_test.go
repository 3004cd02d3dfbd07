package store_test

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"anisync/internal/store"
)

// Both persistent-capable backends must agree on the contract the cache and
// queue layers rely on, so each case runs against memory and sqlite.
func backends(t *testing.T) map[string]store.Store {
	t.Helper()
	sqlite, err := store.OpenSQLite(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]store.Store{
		"memory": store.NewMemory(),
		"sqlite": sqlite,
	}
}

func TestGetMissingKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(context.Background(), "nope")
			if err != nil {
				t.Fatalf("Get returned error: %v", err)
			}
			if ok {
				t.Fatal("expected miss for unknown key")
			}
		})
	}
}

func TestSetGetDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Set(ctx, "k", "v", time.Hour); err != nil {
				t.Fatalf("Set: %v", err)
			}
			value, ok, err := s.Get(ctx, "k")
			if err != nil || !ok || value != "v" {
				t.Fatalf("Get = (%q, %v, %v), want (v, true, nil)", value, ok, err)
			}
			if err := s.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, ok, _ := s.Get(ctx, "k"); ok {
				t.Fatal("expected miss after delete")
			}
		})
	}
}

func TestKeysPattern(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, key := range []string{"integration:a", "integration:b", "meta:1"} {
				if err := s.Set(ctx, key, "x", time.Hour); err != nil {
					t.Fatalf("Set %s: %v", key, err)
				}
			}
			keys, err := s.Keys(ctx, "integration:*")
			if err != nil {
				t.Fatalf("Keys: %v", err)
			}
			sort.Strings(keys)
			if len(keys) != 2 || keys[0] != "integration:a" || keys[1] != "integration:b" {
				t.Fatalf("Keys = %v, want [integration:a integration:b]", keys)
			}
		})
	}
}

func TestListFIFO(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.ListPush(ctx, "q", "a", "b", "c"); err != nil {
				t.Fatalf("ListPush: %v", err)
			}
			if n, err := s.ListLen(ctx, "q"); err != nil || n != 3 {
				t.Fatalf("ListLen = (%d, %v), want (3, nil)", n, err)
			}
			for _, want := range []string{"a", "b", "c"} {
				got, ok, err := s.ListPop(ctx, "q")
				if err != nil || !ok || got != want {
					t.Fatalf("ListPop = (%q, %v, %v), want (%q, true, nil)", got, ok, err, want)
				}
			}
			if _, ok, err := s.ListPop(ctx, "q"); err != nil || ok {
				t.Fatalf("expected empty pop, got ok=%v err=%v", ok, err)
			}
		})
	}
}

func TestDeleteClearsList(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.ListPush(ctx, "q", "a", "b"); err != nil {
				t.Fatalf("ListPush: %v", err)
			}
			if err := s.Delete(ctx, "q"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if n, _ := s.ListLen(ctx, "q"); n != 0 {
				t.Fatalf("list length after delete = %d, want 0", n)
			}
		})
	}
}

func TestMemoryTTLExpires(t *testing.T) {
	s := store.NewMemory()
	current := time.Now()
	s.SetClock(func() time.Time { return current })

	ctx := context.Background()
	if err := s.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	current = current.Add(2 * time.Minute)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatal("expected miss after expiry")
	}
	if keys, _ := s.Keys(ctx, "*"); len(keys) != 0 {
		t.Fatalf("expired key still enumerable: %v", keys)
	}
}

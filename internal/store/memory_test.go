package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("returns ErrNotFound for missing key", func(t *testing.T) {
		s := NewMemoryStore()

		if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("round trips a value", func(t *testing.T) {
		s := NewMemoryStore()

		if err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, err := s.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(got) != "v" {
			t.Errorf("Expected v, got %s", got)
		}
	})

	t.Run("stored value is isolated from caller slice", func(t *testing.T) {
		s := NewMemoryStore()
		buf := []byte("abc")

		//nolint:errcheck // MemoryStore.Set never fails
		s.Set(ctx, "k", buf, 0)
		buf[0] = 'x'

		got, _ := s.Get(ctx, "k")
		if string(got) != "abc" {
			t.Errorf("Expected abc, got %s", got)
		}
	})

	t.Run("expires entries after ttl", func(t *testing.T) {
		s := NewMemoryStore()
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return now }

		//nolint:errcheck // MemoryStore.Set never fails
		s.Set(ctx, "k", []byte("v"), time.Minute)

		now = now.Add(59 * time.Second)
		if _, err := s.Get(ctx, "k"); err != nil {
			t.Errorf("Expected value before expiry, got %v", err)
		}

		now = now.Add(time.Second)
		if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound after expiry, got %v", err)
		}
	})

	t.Run("delete removes key", func(t *testing.T) {
		s := NewMemoryStore()

		//nolint:errcheck // MemoryStore.Set never fails
		s.Set(ctx, "k", []byte("v"), 0)
		//nolint:errcheck // MemoryStore.Delete never fails
		s.Delete(ctx, "k")

		if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("sweep drops only expired entries", func(t *testing.T) {
		s := NewMemoryStore()
		now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		s.now = func() time.Time { return now }

		//nolint:errcheck // MemoryStore.Set never fails
		s.Set(ctx, "short", []byte("1"), time.Second)
		//nolint:errcheck // MemoryStore.Set never fails
		s.Set(ctx, "forever", []byte("2"), 0)

		now = now.Add(time.Hour)
		if dropped := s.Sweep(); dropped != 1 {
			t.Errorf("Expected 1 dropped entry, got %d", dropped)
		}
		if _, err := s.Get(ctx, "forever"); err != nil {
			t.Errorf("Expected non-expiring entry to survive, got %v", err)
		}
	})
}

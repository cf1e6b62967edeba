package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yaojiejia/portfolioAnalysis/internal/apperrors"
)

// These tests live in package service because they exercise unexported helpers.

func TestKeyedMutex(t *testing.T) {
	t.Run("serializes holders of the same key", func(t *testing.T) {
		km := newKeyedMutex()

		var mu sync.Mutex
		inside, maxInside := 0, 0

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := km.Lock("user-1")
				defer unlock()

				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
			}()
		}
		wg.Wait()

		if maxInside != 1 {
			t.Errorf("Expected at most 1 holder, saw %d", maxInside)
		}
	})

	t.Run("different keys do not block each other", func(t *testing.T) {
		km := newKeyedMutex()

		unlockA := km.Lock("a")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlock := km.Lock("b")
			unlock()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Lock on a different key blocked")
		}
	})

	t.Run("drops released keys", func(t *testing.T) {
		km := newKeyedMutex()

		km.Lock("a")()

		if len(km.locks) != 0 {
			t.Errorf("Expected no retained locks, got %d", len(km.locks))
		}
	})
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1234.5", "USD", "$1,234.50"},
		{"0", "USD", "$0.00"},
		{"-12.5", "USD", "-$12.50"},
		{"0.005", "USD", "$0.01"},
		{"99.99", "NOPE", "$99.99"},
	}

	for _, tt := range tests {
		t.Run(tt.amount+" "+tt.currency, func(t *testing.T) {
			got := formatMoney(decimal.RequireFromString(tt.amount), tt.currency)
			if got != tt.want {
				t.Errorf("formatMoney(%s, %s) = %q, want %q", tt.amount, tt.currency, got, tt.want)
			}
		})
	}
}

func TestPercentOf(t *testing.T) {
	if got := percentOf(decimal.NewFromInt(1), decimal.NewFromInt(3)); got.String() != "33.33" {
		t.Errorf("Expected 33.33, got %s", got)
	}
	if got := percentOf(decimal.NewFromInt(5), decimal.Zero); !got.IsZero() {
		t.Errorf("Expected zero for zero whole, got %s", got)
	}
}

func TestAuthService_AccessTokenExpiry(t *testing.T) {
	svc, err := NewAuthService(nil, AuthSettings{
		JWTSecret:      "expiry-secret",
		AccessTokenTTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewAuthService() returned unexpected error: %v", err)
	}

	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, err := svc.issueAccessToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("issueAccessToken() returned unexpected error: %v", err)
	}

	svc.now = func() time.Time { return issued.Add(59 * time.Minute) }
	if _, err := svc.ParseAccessToken(token); err != nil {
		t.Errorf("Expected token to be valid before expiry, got %v", err)
	}

	svc.now = func() time.Time { return issued.Add(61 * time.Minute) }
	if _, err := svc.ParseAccessToken(token); !errors.Is(err, apperrors.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken after expiry, got %v", err)
	}
}

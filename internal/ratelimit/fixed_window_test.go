package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func TestAllowsExactlyMaxRequests(t *testing.T) {
	l := New(nil)
	max := 5
	for i := 1; i <= max; i++ {
		d := l.Check("caller", "llm", max, time.Minute)
		if !d.Allowed {
			t.Fatalf("request %d: expected allowed", i)
		}
		if want := max - i; d.Remaining != want {
			t.Fatalf("request %d: remaining = %d, want %d", i, d.Remaining, want)
		}
	}
	for i := 0; i < 3; i++ {
		d := l.Check("caller", "llm", max, time.Minute)
		if d.Allowed {
			t.Fatal("expected rejection past the quota")
		}
		if d.Remaining != 0 {
			t.Fatalf("remaining = %d, want 0 while rejected", d.Remaining)
		}
	}
}

func TestFreshWindowAfterReset(t *testing.T) {
	l := New(nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return now })

	for i := 0; i < 10; i++ {
		l.Check("caller", "stt", 3, time.Minute)
	}

	now = now.Add(61 * time.Second)
	d := l.Check("caller", "stt", 3, time.Minute)
	if !d.Allowed {
		t.Fatal("expected allow in a fresh window")
	}
	if d.Remaining != 2 {
		t.Fatalf("remaining = %d, want 2 (count restarted at 1)", d.Remaining)
	}
	if want := now.Add(time.Minute); !d.ResetAt.Equal(want) {
		t.Fatalf("resetAt = %v, want %v", d.ResetAt, want)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(nil)
	l.Check("a", "llm", 1, time.Minute)
	if d := l.Check("a", "llm", 1, time.Minute); d.Allowed {
		t.Fatal("caller a should be limited")
	}
	if d := l.Check("b", "llm", 1, time.Minute); !d.Allowed {
		t.Fatal("caller b has its own window")
	}
	if d := l.Check("a", "stt", 1, time.Minute); !d.Allowed {
		t.Fatal("same caller, different class has its own window")
	}
}

func TestEvictExpired(t *testing.T) {
	store := NewMemoryStore()
	l := New(store)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return now })

	l.Check("a", "llm", 5, time.Minute)
	l.Check("b", "llm", 5, time.Minute)
	if store.Len() != 2 {
		t.Fatalf("store len = %d, want 2", store.Len())
	}

	now = now.Add(2 * time.Minute)
	if n := l.EvictExpired(); n != 2 {
		t.Fatalf("evicted %d, want 2", n)
	}
	if store.Len() != 0 {
		t.Fatalf("store len = %d after eviction, want 0", store.Len())
	}
}

func TestConcurrentChecksLoseNoCounts(t *testing.T) {
	l := New(nil)
	const workers = 16
	const perWorker = 25

	var wg sync.WaitGroup
	allowed := make(chan bool, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				allowed <- l.Check("caller", "tts", 100, time.Minute).Allowed
			}
		}()
	}
	wg.Wait()
	close(allowed)

	n := 0
	for ok := range allowed {
		if ok {
			n++
		}
	}
	if n != 100 {
		t.Fatalf("allowed %d requests, want exactly 100", n)
	}
}

package httpx

import (
	"testing"
	"time"
)

func TestRateLimiterFixedWindow(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)

	if !rl.allow("a") || !rl.allow("a") {
		t.Fatal("first two requests in the window should pass")
	}
	if rl.allow("a") {
		t.Fatal("third request in the window should be limited")
	}
	// Other clients have their own window.
	if !rl.allow("b") {
		t.Fatal("a different client should not be limited")
	}

	time.Sleep(70 * time.Millisecond)
	if !rl.allow("a") {
		t.Fatal("a new window should admit the client again")
	}
}

func TestRateLimiterSweepsExpiredVisitors(t *testing.T) {
	rl := NewRateLimiter(5, 30*time.Millisecond)

	rl.allow("a")
	rl.allow("b")
	rl.allow("c")

	time.Sleep(50 * time.Millisecond)
	rl.allow("d")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.visitors) != 1 {
		t.Fatalf("expired visitors should be swept, map holds %d entries", len(rl.visitors))
	}
	if rl.visitors["d"] == nil {
		t.Fatal("the active visitor should survive the sweep")
	}
}

package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinBudget(t *testing.T) {
	l := New(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("attempt %d should be allowed", i)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("fourth attempt should be blocked")
	}
	// other keys unaffected
	if !l.Allow("5.6.7.8") {
		t.Fatal("different key should be allowed")
	}
	if l.RetryAfter("1.2.3.4") <= 0 {
		t.Fatal("expected positive retry-after for blocked key")
	}
}

func TestWindowSlides(t *testing.T) {
	l := New(2, 40*time.Millisecond)
	if !l.Allow("k") || !l.Allow("k") {
		t.Fatal("first two attempts should pass")
	}
	if l.Allow("k") {
		t.Fatal("third attempt should be blocked")
	}
	time.Sleep(60 * time.Millisecond)
	if !l.Allow("k") {
		t.Fatal("attempt after window should pass")
	}
}

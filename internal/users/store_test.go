package users

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "users.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRegisterAndVerify(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if any, err := s.HasAny(ctx); err != nil || any {
		t.Fatalf("expected empty store, any=%v err=%v", any, err)
	}
	id, err := s.Register(ctx, "admin", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}
	if any, _ := s.HasAny(ctx); !any {
		t.Fatal("expected HasAny after register")
	}

	got, err := s.Verify(ctx, "admin", "secret1")
	if err != nil || got != id {
		t.Fatalf("verify: id=%q err=%v", got, err)
	}
	if _, err := s.Verify(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Verify(ctx, "nobody", "secret1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegisterGateClosesAfterFirstUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Register(ctx, "admin", "secret1"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := s.Register(ctx, "bob", "x"); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestRegisterInvalidInput(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, tc := range []struct{ username, password string }{
		{"", "secret1"},
		{"   ", "secret1"},
		{"admin", ""},
	} {
		if _, err := s.Register(ctx, tc.username, tc.password); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("username=%q password=%q: expected ErrInvalidInput, got %v", tc.username, tc.password, err)
		}
	}
	if any, _ := s.HasAny(ctx); any {
		t.Fatal("invalid registrations must not create users")
	}
}

func TestRegisterConcurrentRace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Register(ctx, "user"+string(rune('a'+i)), "secret1")
		}(i)
	}
	wg.Wait()

	success := 0
	for i, err := range errs {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrAlreadyInitialized):
		default:
			t.Fatalf("attempt %d: unexpected error %v", i, err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 successful registration, got %d", success)
	}
}

func TestDurabilityAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.db")
	ctx := context.Background()

	s, err := New(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	id, err := s.Register(ctx, "admin", "secret1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := New(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer s2.Close()
	got, err := s2.Verify(ctx, "admin", "secret1")
	if err != nil || got != id {
		t.Fatalf("verify after reopen: id=%q err=%v", got, err)
	}
	u, err := s2.GetByID(ctx, id)
	if err != nil || u.Username != "admin" || u.CreatedAt.IsZero() {
		t.Fatalf("get by id after reopen: %+v err=%v", u, err)
	}
}

package lock

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"annogen/internal/diag"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.h.lock")
	first := New(path, 5*time.Millisecond)
	second := New(path, 5*time.Millisecond)

	if err := first.Acquire(context.Background()); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if !first.Held() {
		t.Fatal("first lock not held")
	}
	if ok, err := second.TryAcquire(); err != nil || ok {
		t.Fatalf("second TryAcquire while held: ok=%v err=%v", ok, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := second.Acquire(ctx); err == nil {
		t.Fatal("second Acquire succeeded while first holds the lock")
	}

	done := make(chan error, 1)
	go func() { done <- second.Acquire(context.Background()) }()
	time.Sleep(20 * time.Millisecond)
	if err := first.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("waiter Acquire: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never got the lock")
	}
	if err := second.Release(); err != nil {
		t.Fatal(err)
	}
	if err := second.Release(); err != nil {
		t.Errorf("double Release: %v", err)
	}
}

func TestAcquireCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.lock")
	holder := New(path, 0)
	if err := holder.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = holder.Release() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(path, 0).Acquire(ctx)
	if err == nil {
		t.Fatal("Acquire with a cancelled context succeeded")
	}
	if d, ok := diag.AsDiagnostic(err); !ok || d.Code != diag.IOLockError {
		t.Errorf("err = %v, want an %s diagnostic", err, diag.IOLockError.ID())
	}
	if PathFor("gen/out.h") != "gen/out.h.lock" {
		t.Error("PathFor")
	}
}

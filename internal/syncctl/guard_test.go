package syncctl

import (
	"sync"
	"testing"

	"activities-cli/internal/dispatch"
)

func TestGuard_RejectsIdenticalInFlightMutation(t *testing.T) {
	var g Guard
	k := Key{Op: dispatch.OpRegister, Activity: "Chess Club", Participant: "ada@example.com"}

	release, ok := g.Acquire(k)
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}
	if _, ok := g.Acquire(k); ok {
		t.Fatalf("expected duplicate acquire to fail")
	}
	other := Key{Op: dispatch.OpUnregister, Activity: "Chess Club", Participant: "ada@example.com"}
	releaseOther, ok := g.Acquire(other)
	if !ok {
		t.Fatalf("expected different mutation to proceed")
	}
	releaseOther()

	release()
	release()
	if g.InFlight() != 0 {
		t.Fatalf("expected nothing in flight, got %d", g.InFlight())
	}
	if _, ok := g.Acquire(k); !ok {
		t.Fatalf("expected acquire after release to succeed")
	}
}

func TestGuard_ConcurrentAcquireAdmitsOne(t *testing.T) {
	var g Guard
	k := Key{Op: dispatch.OpRegister, Activity: "Chess Club", Participant: "ada@example.com"}

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := g.Acquire(k); ok {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if admitted != 1 {
		t.Fatalf("expected exactly one admitted, got %d", admitted)
	}
}

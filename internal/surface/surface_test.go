package surface

import "testing"

// TestPairingAcrossFullCycles walks every backbuffer count a real chain
// uses through full index cycles and checks acquire/release stay strictly
// paired, matching counts at every step.
func TestPairingAcrossFullCycles(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4} {
		g := pairGuard{n: n}
		acquires, releases := 0, 0

		for cycle := 0; cycle < 3; cycle++ {
			for idx := 0; idx < n; idx++ {
				if err := g.acquire(idx); err != nil {
					t.Fatalf("n=%d: acquire(%d) cycle %d: %v", n, idx, cycle, err)
				}
				acquires++
				got, err := g.release()
				if err != nil {
					t.Fatalf("n=%d: release after acquire(%d): %v", n, idx, err)
				}
				if got != idx {
					t.Fatalf("n=%d: release returned slot %d, want %d", n, got, idx)
				}
				releases++
			}
		}
		if acquires != releases || acquires != 3*n {
			t.Errorf("n=%d: acquires=%d releases=%d, want both %d", n, acquires, releases, 3*n)
		}
	}
}

func TestDoubleAcquireRejected(t *testing.T) {
	g := pairGuard{n: 2}
	if err := g.acquire(0); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := g.acquire(0); err == nil {
		t.Fatal("double acquire of the held slot succeeded")
	}
	if err := g.acquire(1); err == nil {
		t.Fatal("acquire of a second slot succeeded while one is held")
	}
	if _, err := g.release(); err != nil {
		t.Fatalf("release after rejected acquires: %v", err)
	}
	if err := g.acquire(1); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestReleaseWithoutAcquireRejected(t *testing.T) {
	g := pairGuard{n: 1}
	if _, err := g.release(); err == nil {
		t.Fatal("release without a held slot succeeded")
	}
}

func TestAcquireOutOfRangeRejected(t *testing.T) {
	g := pairGuard{n: 2}
	for _, idx := range []int{-1, 2, 7} {
		if err := g.acquire(idx); err == nil {
			t.Errorf("acquire(%d) succeeded with 2 slots", idx)
		}
	}
	if g.acquired {
		t.Error("rejected acquire left the guard held")
	}
}

package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestSingleWorkerRunsInline(t *testing.T) {
	pool := Start(1)

	var order []int
	for i := range 5 {
		pool.Do(func() { order = append(order, i) })
		if len(order) != i+1 {
			t.Fatalf("job %d did not run before Do returned", i)
		}
	}
	pool.Wait()

	for i, v := range order {
		if v != i {
			t.Fatalf("expected jobs in submission order, got %v", order)
		}
	}
}

func TestPoolRunsEveryJob(t *testing.T) {
	pool := Start(4)
	if pool.Workers() != 4 {
		t.Fatalf("expected 4 workers, got %d", pool.Workers())
	}

	var count atomic.Int64
	for range 100 {
		pool.Do(func() { count.Add(1) })
	}
	pool.Wait()

	if got := count.Load(); got != 100 {
		t.Fatalf("expected 100 jobs run, got %d", got)
	}
}

func TestPoolDefaultsToGOMAXPROCS(t *testing.T) {
	pool := Start(0)
	defer pool.Wait()

	if got, want := pool.Workers(), runtime.GOMAXPROCS(0); got != want {
		t.Fatalf("expected %d workers, got %d", want, got)
	}
}

func TestWaitTwice(t *testing.T) {
	pool := Start(2)
	pool.Do(func() {})
	pool.Wait()
	pool.Wait()
}

package sweep_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nikbrunner/chatfolders/internal/sweep"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) apply(_ context.Context, nurls []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, nurls)
	return len(nurls), nil
}

func (r *recorder) calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string{}, r.batches...)
}

func TestSweeper_CoalescesReports(t *testing.T) {
	rec := &recorder{}
	done := make(chan sweep.Result, 4)
	s := sweep.New(sweep.Params{
		Delay:  50 * time.Millisecond,
		Apply:  rec.apply,
		OnDone: func(r sweep.Result) { done <- r },
	})
	defer s.Stop()

	s.Report("a")
	s.Report("b", "a")
	s.Report("c")

	select {
	case r := <-done:
		if r.Removed != 3 {
			t.Errorf("removed = %d, want 3", r.Removed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sweep never flushed")
	}

	calls := rec.calls()
	if len(calls) != 1 {
		t.Fatalf("apply called %d times, want 1", len(calls))
	}
	want := []string{"a", "b", "c"}
	for i, n := range want {
		if calls[0][i] != n {
			t.Errorf("batch = %v, want %v", calls[0], want)
			break
		}
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d after flush", s.Pending())
	}
}

func TestSweeper_FlushNow(t *testing.T) {
	rec := &recorder{}
	s := sweep.New(sweep.Params{Delay: time.Hour, Apply: rec.apply})
	defer s.Stop()

	if r := s.Flush(context.Background()); r.Batch != nil {
		t.Errorf("empty flush = %+v", r)
	}

	s.Report("x", "")
	r := s.Flush(context.Background())
	if len(r.Batch) != 1 || r.Batch[0] != "x" {
		t.Errorf("batch = %v", r.Batch)
	}
	if len(rec.calls()) != 1 {
		t.Errorf("apply calls = %d", len(rec.calls()))
	}
}

func TestSweeper_StopDropsPending(t *testing.T) {
	rec := &recorder{}
	s := sweep.New(sweep.Params{Delay: 20 * time.Millisecond, Apply: rec.apply})

	s.Report("a")
	s.Stop()
	s.Report("b")
	time.Sleep(80 * time.Millisecond)

	if n := len(rec.calls()); n != 0 {
		t.Errorf("apply called %d times after Stop", n)
	}
}

func TestSweeper_ApplyError(t *testing.T) {
	boom := errors.New("boom")
	s := sweep.New(sweep.Params{
		Delay: time.Hour,
		Apply: func(context.Context, []string) (int, error) { return 0, boom },
	})
	defer s.Stop()

	s.Report("a")
	if r := s.Flush(context.Background()); !errors.Is(r.Err, boom) {
		t.Errorf("err = %v, want boom", r.Err)
	}
}

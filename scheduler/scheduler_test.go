package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"apartment-watcher/utils"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	waitWithin(t, 2*time.Second, what, cond)
}

func waitWithin(t *testing.T, d time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStartRunsImmediately(t *testing.T) {
	var runs int32
	s := New(time.Hour, func(context.Context) { atomic.AddInt32(&runs, 1) }, utils.NewLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(time.Second)

	waitFor(t, "first run", func() bool { return atomic.LoadInt32(&runs) == 1 })
}

func TestOverlappingRunIsSkipped(t *testing.T) {
	var starts int32
	release := make(chan struct{})
	finished := make(chan struct{}, 2)

	s := New(time.Hour, func(context.Context) {
		n := atomic.AddInt32(&starts, 1)
		if n == 1 {
			<-release
		}
		finished <- struct{}{}
	}, utils.NewLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(time.Second)

	waitFor(t, "first run to start", func() bool { return atomic.LoadInt32(&starts) == 1 })

	s.runNow()
	if got := atomic.LoadInt32(&starts); got != 1 {
		t.Fatalf("overlapping run started: starts=%d", got)
	}

	close(release)
	<-finished

	// The guard frees up just after the job returns.
	waitFor(t, "run after completion", func() bool {
		s.runNow()
		return atomic.LoadInt32(&starts) == 2
	})
}

func TestPanickingJobDoesNotKillScheduler(t *testing.T) {
	var runs int32
	s := New(time.Hour, func(context.Context) {
		atomic.AddInt32(&runs, 1)
		panic("boom")
	}, utils.NewLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(time.Second)

	waitFor(t, "first run", func() bool { return atomic.LoadInt32(&runs) == 1 })
	waitFor(t, "second run after recovering from panic", func() bool {
		s.runNow()
		return atomic.LoadInt32(&runs) == 2
	})
}

func TestIntervalTickFiresAfterPanickingFirstRun(t *testing.T) {
	var runs int32
	s := New(time.Second, func(context.Context) {
		if atomic.AddInt32(&runs, 1) == 1 {
			panic("first cycle blew up")
		}
	}, utils.NewLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(time.Second)

	waitWithin(t, 2500*time.Millisecond, "second run from the interval timer", func() bool {
		return atomic.LoadInt32(&runs) >= 2
	})
}

func TestStopWaitsForFirstRun(t *testing.T) {
	var finished int32
	s := New(time.Hour, func(context.Context) {
		time.Sleep(300 * time.Millisecond)
		atomic.StoreInt32(&finished, 1)
	}, utils.NewLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if !s.Stop(2 * time.Second) {
		t.Fatal("Stop timed out waiting for a 300ms run")
	}
	if atomic.LoadInt32(&finished) != 1 {
		t.Fatal("Stop returned while the first run was still in flight")
	}
}

func TestStopTimesOutWhileRunInFlight(t *testing.T) {
	var started int32
	release := make(chan struct{})
	s := New(time.Hour, func(context.Context) {
		atomic.StoreInt32(&started, 1)
		<-release
	}, utils.NewLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, "first run to start", func() bool { return atomic.LoadInt32(&started) == 1 })

	if s.Stop(20 * time.Millisecond) {
		t.Fatal("Stop reported idle while a run was blocked")
	}

	close(release)
	if !s.Stop(time.Second) {
		t.Fatal("Stop timed out after the run was released")
	}
}

func TestStartRejectsSubSecondInterval(t *testing.T) {
	s := New(10*time.Millisecond, func(context.Context) {}, utils.NewLogger())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for sub-second interval")
	}
}

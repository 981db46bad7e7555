package loop

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDrainRunsInOrder(t *testing.T) {
	l := New()
	var got []int
	l.Post(func() {
		got = append(got, 1)
		l.Post(func() { got = append(got, 3) })
	})
	l.Post(func() { got = append(got, 2) })

	if n := l.Drain(); n != 3 {
		t.Errorf("Drain() = %d, want 3", n)
	}
	want := []int{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if l.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", l.Pending())
	}
}

func TestRunAndDo(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- l.Run(ctx) }()

	counter := 0
	for range 5 {
		if err := l.Do(context.Background(), func() error {
			counter++
			return nil
		}); err != nil {
			t.Fatal(err)
		}
	}
	if counter != 5 {
		t.Errorf("counter = %d, want 5", counter)
	}

	boom := errors.New("boom")
	if err := l.Do(context.Background(), func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Do() error = %v, want %v", err, boom)
	}

	cancel()
	select {
	case err := <-stopped:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestDoContextTimeout(t *testing.T) {
	l := New() // never drained
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ran := false
	if err := l.Do(ctx, func() error { ran = true; return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() error = %v, want DeadlineExceeded", err)
	}

	if n := l.Drain(); n != 1 {
		t.Errorf("Drain() = %d, want 1", n)
	}
	if ran {
		t.Error("fn ran after Do timed out")
	}
}

func TestDoWaitsForStartedTask(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := false
	errc := make(chan error, 1)
	go func() {
		errc <- l.Do(ctx, func() error {
			cancel()
			time.Sleep(20 * time.Millisecond)
			ran = true
			return nil
		})
	}()
	for l.Pending() == 0 {
		time.Sleep(time.Millisecond)
	}
	l.Drain()

	if err := <-errc; err != nil {
		t.Errorf("Do() error = %v, want nil once fn started", err)
	}
	if !ran {
		t.Error("fn did not run")
	}
}

func TestFutureResolveOnce(t *testing.T) {
	f := NewFuture[int]()
	if f.Settled() {
		t.Fatal("new future is settled")
	}

	var calls []int
	f.OnSettled(func(v int, _ error) { calls = append(calls, v) })

	if !f.Resolve(1, nil) {
		t.Error("first Resolve() = false, want true")
	}
	if f.Resolve(2, errors.New("late")) {
		t.Error("second Resolve() = true, want false")
	}
	v, err := f.Result()
	if v != 1 || err != nil {
		t.Errorf("Result() = %d, %v, want 1, nil", v, err)
	}

	f.OnSettled(func(v int, _ error) { calls = append(calls, v*10) })
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 10 {
		t.Errorf("callbacks = %v, want [1 10]", calls)
	}

	select {
	case <-f.Done():
	default:
		t.Error("Done() not closed after Resolve")
	}
}

func TestResolved(t *testing.T) {
	boom := errors.New("boom")
	f := Resolved("x", boom)
	v, err := f.Wait(context.Background())
	if v != "x" || err != boom {
		t.Errorf("Wait() = %q, %v", v, err)
	}
}

package poller

import (
	"testing"
	"time"
)

func TestDebouncerCollapsesBursts(t *testing.T) {
	t.Parallel()
	var runs int
	d := NewDebouncer(5*time.Second, func() { runs++ })

	for i := 0; i < 10; i++ {
		d.Trigger()
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
}

func TestDebouncerWindowReopens(t *testing.T) {
	t.Parallel()
	var runs int
	d := NewDebouncer(30*time.Millisecond, func() { runs++ })

	if !d.Trigger() {
		t.Fatal("first trigger should run the action")
	}
	if d.Trigger() {
		t.Fatal("trigger inside the window should be dropped")
	}

	time.Sleep(60 * time.Millisecond)
	if !d.Trigger() {
		t.Fatal("trigger after the window should run again")
	}
	if runs != 2 {
		t.Fatalf("runs = %d, want 2", runs)
	}
}

func TestDebouncerNilAction(t *testing.T) {
	t.Parallel()
	d := NewDebouncer(time.Second, nil)
	if !d.Trigger() {
		t.Fatal("trigger should still consume the window")
	}
}

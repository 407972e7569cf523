package circuitbreaker

import (
	"testing"
	"time"
)

func TestStartsClosed(t *testing.T) {
	b := New(3, 1, time.Minute)
	if b.State() != StateClosed {
		t.Fatalf("expected closed, got %v", b.State())
	}
	if !b.Allow() {
		t.Error("closed breaker should allow calls")
	}
}

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	b := New(3, 1, time.Minute)

	b.Failure()
	b.Failure()
	if b.State() != StateClosed {
		t.Fatalf("expected still closed after 2 failures, got %v", b.State())
	}

	b.Failure()
	if b.State() != StateOpen {
		t.Fatalf("expected open after 3 failures, got %v", b.State())
	}
	if b.Allow() {
		t.Error("open breaker should reject calls")
	}
}

func TestSuccessResetsFailureStreak(t *testing.T) {
	b := New(3, 1, time.Minute)

	b.Failure()
	b.Failure()
	b.Success()
	b.Failure()
	b.Failure()

	if b.State() != StateClosed {
		t.Fatalf("expected closed, interleaved success should reset the streak, got %v", b.State())
	}
}

func TestHalfOpenAfterCooldown(t *testing.T) {
	b := New(1, 1, 10*time.Millisecond)

	b.Failure()
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %v", b.State())
	}

	time.Sleep(20 * time.Millisecond)
	if b.State() != StateHalfOpen {
		t.Fatalf("expected half_open after cooldown, got %v", b.State())
	}
	if !b.Allow() {
		t.Error("half-open breaker should allow a probe call")
	}
}

func TestHalfOpenClosesOnSuccess(t *testing.T) {
	b := New(1, 2, 10*time.Millisecond)

	b.Failure()
	time.Sleep(20 * time.Millisecond)

	b.Success()
	if b.State() != StateHalfOpen {
		t.Fatalf("expected still half_open after 1 of 2 successes, got %v", b.State())
	}
	b.Success()
	if b.State() != StateClosed {
		t.Fatalf("expected closed after success threshold, got %v", b.State())
	}
}

func TestHalfOpenReopensOnFailure(t *testing.T) {
	b := New(1, 1, 10*time.Millisecond)

	b.Failure()
	time.Sleep(20 * time.Millisecond)
	if b.State() != StateHalfOpen {
		t.Fatalf("expected half_open, got %v", b.State())
	}

	b.Failure()
	if b.State() != StateOpen {
		t.Fatalf("expected reopened, got %v", b.State())
	}
}

func TestZeroValuesGetDefaults(t *testing.T) {
	b := New(0, 0, 0)
	for i := 0; i < 4; i++ {
		b.Failure()
	}
	if b.State() != StateClosed {
		t.Fatalf("expected default threshold of 5, got open at 4")
	}
	b.Failure()
	if b.State() != StateOpen {
		t.Fatalf("expected open at 5 failures, got %v", b.State())
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half_open",
		State(99):     "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

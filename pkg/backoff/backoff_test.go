package backoff

import (
	"testing"
	"time"
)

func TestDelayDefaultSchedule(t *testing.T) {
	expected := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second, // stays at max
		30 * time.Second,
	}

	for attempt, exp := range expected {
		if got := Delay(attempt); got != exp {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, exp)
		}
	}
}

func TestDelayNegativeAttempt(t *testing.T) {
	if got := Delay(-1); got != InitialDelay {
		t.Errorf("Delay(-1) = %v, want %v", got, InitialDelay)
	}
}

func TestDelayLargeAttemptDoesNotOverflow(t *testing.T) {
	if got := Delay(200); got != MaxDelay {
		t.Errorf("Delay(200) = %v, want %v", got, MaxDelay)
	}
}

func TestPolicyCustom(t *testing.T) {
	p := Policy{Initial: 10 * time.Millisecond, Max: 45 * time.Millisecond}

	expected := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
		45 * time.Millisecond, // capped below the next doubling
		45 * time.Millisecond,
	}

	for attempt, exp := range expected {
		if got := p.Delay(attempt); got != exp {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, exp)
		}
	}
}

func TestPolicyJitterRange(t *testing.T) {
	p := Policy{Initial: 1 * time.Second, Max: 30 * time.Second, Jitter: 0.25}

	varied := false
	var first time.Duration
	for i := 0; i < 20; i++ {
		d := p.Delay(0)
		if d < 1*time.Second || d > 1250*time.Millisecond {
			t.Fatalf("jittered Delay(0) = %v, want within [1s, 1.25s]", d)
		}
		if i == 0 {
			first = d
		} else if d != first {
			varied = true
		}
	}
	if !varied {
		t.Error("jittered delays never varied across 20 samples")
	}
}

func TestSequenceMatchesDelay(t *testing.T) {
	for i, exp := range Sequence() {
		if got := Delay(i); got != exp {
			t.Errorf("Sequence[%d] = %v but Delay(%d) = %v", i, exp, i, got)
		}
	}
}

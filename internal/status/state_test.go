package status

import (
	"testing"

	"github.com/matheus3301/jobboard/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Booting {
		t.Errorf("initial state = %s, want BOOTING", m.Current())
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Booting, Migrating},
		{Booting, Error},
		{Migrating, Serving},
		{Serving, Degraded},
		{Degraded, Serving},
		{Serving, Stopping},
		{Error, Booting},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to); err != nil {
				t.Errorf("Transition(%s -> %s) error = %v", tt.from, tt.to, err)
			}
			if m.Current() != tt.to {
				t.Errorf("state = %s, want %s", m.Current(), tt.to)
			}
		})
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Booting, Serving},
		{Migrating, Degraded},
		{Stopping, Serving},
		{Stopping, Booting},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to); err == nil {
				t.Errorf("Transition(%s -> %s) should fail", tt.from, tt.to)
			}
			if m.Current() != tt.from {
				t.Errorf("state = %s, want %s (unchanged)", m.Current(), tt.from)
			}
		})
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("daemon.", 10)
	defer unsub()

	m := NewMachine(b)
	walkTo(t, m, Serving)
	if err := m.TransitionWithReason(Degraded, "redis unreachable"); err != nil {
		t.Fatal(err)
	}

	var last StatusChange
	for i := 0; i < 3; i++ {
		evt := <-ch
		if evt.Kind != bus.StatusChanged {
			t.Fatalf("event kind = %q, want %s", evt.Kind, bus.StatusChanged)
		}
		change, ok := evt.Payload.(StatusChange)
		if !ok {
			t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
		}
		last = change
	}
	if last.From != Serving || last.To != Degraded || last.Reason != "redis unreachable" {
		t.Errorf("last change = %+v", last)
	}

	state, reason, since := m.Snapshot()
	if state != Degraded || reason != "redis unreachable" || since.IsZero() {
		t.Errorf("Snapshot() = %s, %q, %v", state, reason, since)
	}
}

// TestStartupLifecycle walks the normal boot path and a clean shutdown.
func TestStartupLifecycle(t *testing.T) {
	m := NewMachine(nil)
	for _, s := range []State{Migrating, Serving, Stopping} {
		if err := m.Transition(s); err != nil {
			t.Fatalf("Transition to %s: %v (current: %s)", s, err, m.Current())
		}
	}
}

func walkTo(t *testing.T, m *Machine, target State) {
	t.Helper()
	paths := map[State][]State{
		Booting:   {},
		Migrating: {Migrating},
		Serving:   {Migrating, Serving},
		Degraded:  {Migrating, Serving, Degraded},
		Stopping:  {Stopping},
		Error:     {Error},
	}
	for _, s := range paths[target] {
		if err := m.Transition(s); err != nil {
			t.Fatalf("walkTo(%s): %v", target, err)
		}
	}
}

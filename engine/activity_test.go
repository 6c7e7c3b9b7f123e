package engine

import (
	"errors"
	"testing"
	"time"
)

func TestTopKStableTieBreak(t *testing.T) {
	a := NewActivityTracker()
	bump := func(nick string, n int) {
		for i := 0; i < n; i++ {
			a.RecordActivity(nick)
		}
	}
	bump("a", 5)
	bump("b", 5)
	bump("c", 2)
	bump("d", 1)

	top := a.TopK(3)
	if len(top) != 3 {
		t.Fatalf("TopK(3) returned %d entries", len(top))
	}
	// a before b (first seen wins the tie), then c.
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if top[i].Nick != w {
			t.Errorf("TopK[%d] = %s, want %s", i, top[i].Nick, w)
		}
	}

	all := a.TopK(0)
	if len(all) != 4 || all[3].Nick != "d" {
		t.Errorf("TopK(0) should rank everyone, got %v", all)
	}
}

func TestCountUnknownUser(t *testing.T) {
	a := NewActivityTracker()
	if got := a.Count("ghost"); got != 0 {
		t.Errorf("Count(unknown) = %d, want 0", got)
	}
	if a.Known("ghost") {
		t.Error("Known(unknown) = true, want false")
	}
}

func TestAfkToggle(t *testing.T) {
	a := NewActivityTracker()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	if _, err := a.AfkDuration("alice", now); !errors.Is(err, ErrNotAfk) {
		t.Errorf("AfkDuration before SetAfk err = %v, want ErrNotAfk", err)
	}

	a.SetAfk("alice", now)
	if !a.IsAfk("alice") {
		t.Fatal("IsAfk = false after SetAfk")
	}
	d, err := a.AfkDuration("alice", now.Add(90*time.Second))
	if err != nil {
		t.Fatalf("AfkDuration err: %v", err)
	}
	if d != 90*time.Second {
		t.Errorf("AfkDuration = %v, want 90s", d)
	}

	a.ClearAfk("alice")
	if a.IsAfk("alice") {
		t.Error("IsAfk = true after ClearAfk")
	}
}

func TestCheckinStreaks(t *testing.T) {
	a := NewActivityTracker()
	day := func(d int) time.Time {
		return time.Date(2024, 5, d, 15, 30, 0, 0, time.UTC)
	}

	t.Run("first checkin", func(t *testing.T) {
		streak, already := a.Checkin("u", day(1))
		if streak != 1 || already {
			t.Errorf("Checkin = (%d, %v), want (1, false)", streak, already)
		}
	})

	t.Run("same day repeat is a no-op", func(t *testing.T) {
		streak, already := a.Checkin("u", day(1))
		if streak != 1 || !already {
			t.Errorf("Checkin = (%d, %v), want (1, true)", streak, already)
		}
	})

	t.Run("consecutive day increments", func(t *testing.T) {
		streak, already := a.Checkin("u", day(2))
		if streak != 2 || already {
			t.Errorf("Checkin = (%d, %v), want (2, false)", streak, already)
		}
	})

	t.Run("gap resets to 1", func(t *testing.T) {
		streak, already := a.Checkin("u", day(4))
		if streak != 1 || already {
			t.Errorf("Checkin = (%d, %v), want (1, false)", streak, already)
		}
	})

	t.Run("time of day does not matter", func(t *testing.T) {
		streak, _ := a.Checkin("u", time.Date(2024, 5, 5, 0, 0, 1, 0, time.UTC))
		if streak != 2 {
			t.Errorf("streak = %d, want 2 for the next calendar day", streak)
		}
	})
}

package engine

import (
	"testing"
	"time"
)

func TestTemporaryMuteLifecycle(t *testing.T) {
	m := NewMuteStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.Mute("u", now.Add(5*time.Minute))

	if !m.IsMuted("u", now.Add(1*time.Minute)) {
		t.Error("IsMuted = false at now+1m, want true")
	}
	if m.IsMuted("u", now.Add(6*time.Minute)) {
		t.Error("IsMuted = true at now+6m, want false")
	}

	lapsed := m.SweepExpired(now.Add(6 * time.Minute))
	if len(lapsed) != 1 || lapsed[0] != "u" {
		t.Fatalf("SweepExpired = %v, want [u]", lapsed)
	}
	// A second sweep reports nothing: the entry is gone.
	if again := m.SweepExpired(now.Add(7 * time.Minute)); len(again) != 0 {
		t.Errorf("second SweepExpired = %v, want empty", again)
	}
}

func TestPermanentMuteNeverSwept(t *testing.T) {
	m := NewMuteStore()
	now := time.Now().UTC()
	m.Mute("p", time.Time{})

	if !m.IsMuted("p", now.Add(1000*time.Hour)) {
		t.Error("permanent mute should never lapse")
	}
	if !m.IsPermanent("p") {
		t.Error("IsPermanent = false for zero expiry")
	}
	if lapsed := m.SweepExpired(now.Add(1000 * time.Hour)); len(lapsed) != 0 {
		t.Errorf("SweepExpired returned %v, permanent mutes must not be swept", lapsed)
	}
	if got := m.RemainingMinutes("p", now); got != PermanentMute {
		t.Errorf("RemainingMinutes = %d, want PermanentMute sentinel", got)
	}

	m.Unmute("p")
	if m.IsMuted("p", now) {
		t.Error("IsMuted = true after Unmute")
	}
}

func TestRemainingMinutesRoundsUp(t *testing.T) {
	m := NewMuteStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m.Mute("u", now.Add(90*time.Second))

	if got := m.RemainingMinutes("u", now); got != 2 {
		t.Errorf("RemainingMinutes = %d, want 2 (90s rounds up)", got)
	}
	if got := m.RemainingMinutes("u", now.Add(3*time.Minute)); got != 0 {
		t.Errorf("RemainingMinutes past expiry = %d, want 0", got)
	}
	if got := m.RemainingMinutes("nobody", now); got != 0 {
		t.Errorf("RemainingMinutes for unmuted = %d, want 0", got)
	}
}

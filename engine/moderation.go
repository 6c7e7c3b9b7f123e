package engine

import (
	"math"
	"time"
)

// PermanentMute is the RemainingMinutes result for a mute with no expiry.
const PermanentMute = math.MaxInt

// MuteStore maps nicks to mute expiry instants. A zero expiry means the mute
// is permanent and is never returned by SweepExpired. Presence in the store
// means "currently muted"; entries change only through Mute, Unmute and the
// sweeper.
type MuteStore struct {
	until map[string]time.Time
}

func NewMuteStore() *MuteStore {
	return &MuteStore{until: make(map[string]time.Time)}
}

// Mute silences nick until the given instant. Pass the zero time for a
// permanent mute. A second Mute for the same nick replaces the expiry.
func (m *MuteStore) Mute(nick string, until time.Time) {
	m.until[nick] = until
}

// Unmute lifts any mute on nick.
func (m *MuteStore) Unmute(nick string) { delete(m.until, nick) }

// IsMuted reports whether nick is muted at the given instant. A lapsed
// temporary mute reads as unmuted even before the sweeper removes it.
func (m *MuteStore) IsMuted(nick string, now time.Time) bool {
	until, ok := m.until[nick]
	if !ok {
		return false
	}
	return until.IsZero() || until.After(now)
}

// IsPermanent reports whether nick carries a mute with no expiry.
func (m *MuteStore) IsPermanent(nick string) bool {
	until, ok := m.until[nick]
	return ok && until.IsZero()
}

// RemainingMinutes returns the whole minutes left on nick's mute, rounded up
// and never negative, or PermanentMute for a mute with no expiry. For an
// unmuted nick it returns 0.
func (m *MuteStore) RemainingMinutes(nick string, now time.Time) int {
	until, ok := m.until[nick]
	if !ok {
		return 0
	}
	if until.IsZero() {
		return PermanentMute
	}
	rem := until.Sub(now)
	if rem <= 0 {
		return 0
	}
	return int(math.Ceil(rem.Minutes()))
}

// Len returns the number of muted users, lapsed-but-unswept entries included.
func (m *MuteStore) Len() int { return len(m.until) }

// SweepExpired removes every temporary mute whose expiry has passed and
// returns the affected nicks. Permanent mutes are never swept.
func (m *MuteStore) SweepExpired(now time.Time) []string {
	var lapsed []string
	for nick, until := range m.until {
		if !until.IsZero() && !until.After(now) {
			delete(m.until, nick)
			lapsed = append(lapsed, nick)
		}
	}
	return lapsed
}

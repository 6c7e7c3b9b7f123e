package engine

import (
	"sort"
	"time"
)

// CheckinRecord tracks a user's daily check-in streak.
type CheckinRecord struct {
	LastDate time.Time // normalized to midnight UTC
	Streak   int
}

// UserCount pairs a nick with its message count for stats output.
type UserCount struct {
	Nick  string
	Count int
}

// ActivityTracker keeps per-user message counters, AFK timestamps and daily
// check-in streaks. Counters are monotonically non-decreasing and never reset.
type ActivityTracker struct {
	counts    map[string]int
	firstSeen []string // nicks in order of first activity, for stable stats ties
	afk       map[string]time.Time
	checkins  map[string]CheckinRecord
}

func NewActivityTracker() *ActivityTracker {
	return &ActivityTracker{
		counts:   make(map[string]int),
		afk:      make(map[string]time.Time),
		checkins: make(map[string]CheckinRecord),
	}
}

// RecordActivity increments the counter for nick, creating it at 1 if absent.
func (a *ActivityTracker) RecordActivity(nick string) {
	if _, ok := a.counts[nick]; !ok {
		a.firstSeen = append(a.firstSeen, nick)
	}
	a.counts[nick]++
}

// Count returns the message count for nick, 0 for unknown users.
func (a *ActivityTracker) Count(nick string) int { return a.counts[nick] }

// Known reports whether nick has any recorded activity.
func (a *ActivityTracker) Known(nick string) bool {
	_, ok := a.counts[nick]
	return ok
}

// TopK returns up to k users with the highest counts, most active first.
// Ties keep the order users first appeared in.
func (a *ActivityTracker) TopK(k int) []UserCount {
	ranked := make([]UserCount, 0, len(a.firstSeen))
	for _, nick := range a.firstSeen {
		ranked = append(ranked, UserCount{Nick: nick, Count: a.counts[nick]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// SetAfk marks nick as away starting at now. Re-marking updates the timestamp.
func (a *ActivityTracker) SetAfk(nick string, now time.Time) { a.afk[nick] = now }

// ClearAfk removes nick's away status.
func (a *ActivityTracker) ClearAfk(nick string) { delete(a.afk, nick) }

// IsAfk reports whether nick is currently away.
func (a *ActivityTracker) IsAfk(nick string) bool {
	_, ok := a.afk[nick]
	return ok
}

// AfkCount returns the number of users currently away.
func (a *ActivityTracker) AfkCount() int { return len(a.afk) }

// AfkDuration returns how long nick has been away. ErrNotAfk if they are not.
func (a *ActivityTracker) AfkDuration(nick string, now time.Time) (time.Duration, error) {
	since, ok := a.afk[nick]
	if !ok {
		return 0, ErrNotAfk
	}
	return now.Sub(since), nil
}

// Checkin records a daily check-in for nick on the given day. A repeat
// check-in on the same day is a no-op that reports the current streak. The
// streak increments only when today is exactly the day after the previous
// check-in; any gap resets it to 1.
func (a *ActivityTracker) Checkin(nick string, today time.Time) (streak int, already bool) {
	day := civilDate(today)
	rec, ok := a.checkins[nick]
	if ok && rec.LastDate.Equal(day) {
		return rec.Streak, true
	}
	streak = 1
	if ok && rec.LastDate.AddDate(0, 0, 1).Equal(day) {
		streak = rec.Streak + 1
	}
	a.checkins[nick] = CheckinRecord{LastDate: day, Streak: streak}
	return streak, false
}

// civilDate truncates t to its calendar day in UTC.
func civilDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

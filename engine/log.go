package engine

import "time"

// Message is a single observed chat line. Messages are immutable once recorded
// and leave the log only through FIFO eviction.
type Message struct {
	ID         uint64    `json:"id"`
	Nick       string    `json:"nick"`
	Text       string    `json:"text"`
	ObservedAt time.Time `json:"time"`
}

// MessageLog is a bounded FIFO of observed messages with an ID index for O(1)
// lookup. IDs are strictly increasing and never reused, even after eviction.
type MessageLog struct {
	limit   int
	nextID  uint64
	ordered []Message
	byID    map[uint64]Message
}

// NewMessageLog returns a log retaining at most limit messages.
func NewMessageLog(limit int) *MessageLog {
	if limit <= 0 {
		limit = 1000
	}
	return &MessageLog{
		limit:  limit,
		nextID: 1,
		byID:   make(map[uint64]Message),
	}
}

// Record appends a message and returns its assigned ID. When the log exceeds
// its limit the oldest message is evicted from both the sequence and the index
// in the same step.
func (l *MessageLog) Record(nick, text string, observedAt time.Time) uint64 {
	m := Message{ID: l.nextID, Nick: nick, Text: text, ObservedAt: observedAt}
	l.nextID++
	l.ordered = append(l.ordered, m)
	l.byID[m.ID] = m
	if len(l.ordered) > l.limit {
		evicted := l.ordered[0]
		l.ordered = l.ordered[1:]
		delete(l.byID, evicted.ID)
	}
	return m.ID
}

// Get returns the message with the given ID, or ErrNotFound if it was evicted
// or never issued.
func (l *MessageLog) Get(id uint64) (Message, error) {
	m, ok := l.byID[id]
	if !ok {
		return Message{}, ErrNotFound
	}
	return m, nil
}

// Recent returns up to k messages, most recent first.
func (l *MessageLog) Recent(k int) []Message {
	if k <= 0 || len(l.ordered) == 0 {
		return nil
	}
	if k > len(l.ordered) {
		k = len(l.ordered)
	}
	out := make([]Message, 0, k)
	for i := len(l.ordered) - 1; i >= len(l.ordered)-k; i-- {
		out = append(out, l.ordered[i])
	}
	return out
}

// All returns the full retained history in arrival order. The slice is a copy;
// callers (export, archive) may hold it across engine steps.
func (l *MessageLog) All() []Message {
	out := make([]Message, len(l.ordered))
	copy(out, l.ordered)
	return out
}

// Len returns the number of retained messages.
func (l *MessageLog) Len() int { return len(l.ordered) }

// Package export serializes the retained message history to JSON files on
// disk. It is a pure sink: failures are reported to the caller and never
// affect engine state.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sun-ldigv3/hack-chat-simple-bot/engine"
)

// FileWriter writes chat history snapshots into a data directory, one file
// per export day (a repeat export on the same day overwrites).
type FileWriter struct {
	Dir string
	Now func() time.Time // defaults to time.Now
}

// Export writes msgs in arrival order as a pretty-printed JSON array of
// {id, nick, text, time} objects and returns the file path.
func (w *FileWriter) Export(msgs []engine.Message) (string, error) {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(w.Dir, fmt.Sprintf("chat_history_%s.json", now().UTC().Format("2006-01-02")))
	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write history: %w", err)
	}
	return path, nil
}

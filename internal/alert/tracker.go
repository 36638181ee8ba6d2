// Package alert remembers which signals were already notified so scheduled
// scans do not repeat them.
package alert

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"QuantSentinel/internal/model"
)

const dayLayout = "2006-01-02"

// Tracker is a file-backed set of notification keys, one entry per key and day.
type Tracker struct {
	mu       sync.Mutex
	state    *model.AlertState
	filePath string
	now      func() time.Time
}

// NewTracker loads or initializes the state at filePath.
func NewTracker(filePath string) (*Tracker, error) {
	state, err := LoadState(filePath)
	if err != nil {
		return nil, fmt.Errorf("load alert state: %w", err)
	}
	return &Tracker{state: state, filePath: filePath, now: time.Now}, nil
}

// ShouldSend reports whether key has not been sent today and, if so, marks it sent.
func (t *Tracker) ShouldSend(key string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	today := t.now().UTC().Format(dayLayout)
	if t.state.Sent[key] == today {
		return false, nil
	}
	t.state.Sent[key] = today
	return true, t.save()
}

// Prune drops keys last sent before the given number of days ago.
func (t *Tracker) Prune(keepDays int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().UTC().AddDate(0, 0, -keepDays).Format(dayLayout)
	removed := 0
	for k, day := range t.state.Sent {
		if day < cutoff {
			delete(t.state.Sent, k)
			removed++
		}
	}
	if removed == 0 {
		return nil
	}
	return t.save()
}

// Len is the number of tracked keys.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.state.Sent)
}

func (t *Tracker) save() error {
	return SaveState(t.filePath, t.state)
}

// ConfluenceKey identifies a confluence signal on one candle.
func ConfluenceKey(symbol string, sig model.ConfluenceSignal) string {
	return join("confluence", symbol, string(sig.Side), fmt.Sprint(sig.Time))
}

// ORBKey identifies a breakout; one per symbol and direction per day.
func ORBKey(sig *model.ORBSignal) string {
	return join("orb", sig.Symbol, string(sig.Direction))
}

// PairKey identifies a pair signal state.
func PairKey(res *model.PairResult) string {
	return join("pair", res.PairA, res.PairB, string(res.Signal))
}

func join(parts ...string) string {
	return strings.Join(parts, ":")
}

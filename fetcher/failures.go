package fetcher

import (
	"sync"
	"time"

	"hotel-rates-scraper/models"
)

// FailureLog is an append-only record of failed fetches, safe for concurrent use
type FailureLog struct {
	mu      sync.Mutex
	entries []models.Failure
}

// Record appends the failure carried by result; successful results are ignored
func (l *FailureLog) Record(result models.FetchResult) {
	if result.OK() {
		return
	}
	l.Append(models.Failure{
		Target: result.Target,
		URL:    result.URL,
		Reason: result.Reason(),
		At:     time.Now(),
	})
}

// Append adds an entry
func (l *FailureLog) Append(f models.Failure) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, f)
}

// Entries returns a copy of the log
func (l *FailureLog) Entries() []models.Failure {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Failure, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries
func (l *FailureLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Package storage provides the in-memory run journal. Nothing is written to
// disk; the journal lives as long as the process.
package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hammamikhairi/pomato/internal/domain"
	"github.com/hammamikhairi/pomato/internal/logger"
)

// Compile-time interface check.
var _ domain.Journal = (*MemoryJournal)(nil)

// NewRunID returns a short identifier for one run of the timer.
func NewRunID() string {
	return uuid.New().String()[:8]
}

// MemoryJournal is an append-only list of phase records. Safe for
// concurrent access.
type MemoryJournal struct {
	mu      sync.RWMutex
	records []domain.PhaseRecord
	log     *logger.Logger
}

// NewMemoryJournal creates an empty journal.
func NewMemoryJournal(log *logger.Logger) *MemoryJournal {
	return &MemoryJournal{log: log}
}

// Record appends a finished phase.
func (j *MemoryJournal) Record(ctx context.Context, rec domain.PhaseRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.log.Debug("recording run=%s cycle=%d phase=%s outcome=%s", rec.RunID, rec.Cycle, rec.Phase, rec.Outcome)
	j.records = append(j.records, rec)
	return nil
}

// List returns a copy of all records in insertion order.
func (j *MemoryJournal) List(ctx context.Context) ([]domain.PhaseRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]domain.PhaseRecord, len(j.records))
	copy(out, j.records)
	return out, nil
}

// Last returns the most recent record, or domain.ErrNotFound if the journal
// is empty.
func (j *MemoryJournal) Last(ctx context.Context) (domain.PhaseRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if len(j.records) == 0 {
		return domain.PhaseRecord{}, domain.ErrNotFound
	}
	return j.records[len(j.records)-1], nil
}

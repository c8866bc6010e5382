package ops

import (
	"sort"
	"sync"
	"time"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
)

// RunRecord is the retained outcome of one tenant sync run.
type RunRecord struct {
	Result     domain.Result `json:"result"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Running    bool          `json:"running"`
}

// StatusLog keeps the latest run per tenant for the ops endpoints.
type StatusLog struct {
	mu   sync.RWMutex
	runs map[string]RunRecord
}

func NewStatusLog() *StatusLog {
	return &StatusLog{runs: map[string]RunRecord{}}
}

// Begin marks a tenant run as in flight.
func (l *StatusLog) Begin(tenantID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs[tenantID] = RunRecord{
		Result:    domain.Result{TenantID: tenantID},
		StartedAt: time.Now().UTC(),
		Running:   true,
	}
}

// Finish records the completed run.
func (l *StatusLog) Finish(tenantID string, result domain.Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	record := l.runs[tenantID]
	record.Result = result
	record.FinishedAt = time.Now().UTC()
	record.Running = false
	l.runs[tenantID] = record
}

// Get returns the latest run for a tenant.
func (l *StatusLog) Get(tenantID string) (RunRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	record, ok := l.runs[tenantID]
	return record, ok
}

// List returns every retained run ordered by tenant id.
func (l *StatusLog) List() []RunRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	records := make([]RunRecord, 0, len(l.runs))
	for _, record := range l.runs {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Result.TenantID < records[j].Result.TenantID
	})
	return records
}

package domain

import "time"

// Checkpoint marks how far a tenant's import of one entity kind has
// committed. NextOffset is exclusive: the batch it closes is never
// reprocessed on resume. The checkpoint is persisted after every committed
// batch and deleted when the run completes.
type Checkpoint struct {
	TenantID   string
	Kind       EntityKind
	NextOffset int
	Stats      Stats
	UpdatedAt  time.Time
}

// maxRetainedErrors bounds the error messages carried in stats so a bad
// import cannot balloon checkpoints or summaries.
const maxRetainedErrors = 20

// Stats accumulates per-record outcomes across batches.
type Stats struct {
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	Skipped   int      `json:"skipped"`
	Errored   int      `json:"errored"`
	Errors    []string `json:"errors,omitempty"`
}

// Apply folds one record outcome into the stats.
func (s *Stats) Apply(outcome Outcome) {
	switch outcome.Code {
	case OutcomeCreated:
		s.Created++
	case OutcomeUpdated:
		s.Updated++
	case OutcomeUnchanged:
		s.Unchanged++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeErrored:
		s.Errored++
		if outcome.Reason != "" && len(s.Errors) < maxRetainedErrors {
			s.Errors = append(s.Errors, outcome.Reason)
		}
	}
}

// Merge folds another stats value into the receiver.
func (s *Stats) Merge(other Stats) {
	s.Created += other.Created
	s.Updated += other.Updated
	s.Unchanged += other.Unchanged
	s.Skipped += other.Skipped
	s.Errored += other.Errored
	for _, msg := range other.Errors {
		if len(s.Errors) >= maxRetainedErrors {
			break
		}
		s.Errors = append(s.Errors, msg)
	}
}

// Processed returns the number of records the stats account for.
func (s Stats) Processed() int {
	return s.Created + s.Updated + s.Unchanged + s.Skipped + s.Errored
}

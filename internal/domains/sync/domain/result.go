package domain

// OutcomeCode classifies what the reconciliation writer did with a record.
type OutcomeCode string

const (
	OutcomeCreated   OutcomeCode = "created"
	OutcomeUpdated   OutcomeCode = "updated"
	OutcomeUnchanged OutcomeCode = "unchanged"
	OutcomeSkipped   OutcomeCode = "skipped"
	OutcomeErrored   OutcomeCode = "errored"
)

// Outcome is the structured per-record result reported by the writer.
type Outcome struct {
	Code   OutcomeCode
	Reason string
}

func Created() Outcome              { return Outcome{Code: OutcomeCreated} }
func Updated() Outcome              { return Outcome{Code: OutcomeUpdated} }
func Unchanged() Outcome            { return Outcome{Code: OutcomeUnchanged} }
func Skipped(reason string) Outcome { return Outcome{Code: OutcomeSkipped, Reason: reason} }
func Errored(reason string) Outcome { return Outcome{Code: OutcomeErrored, Reason: reason} }

// Result summarizes one tenant's sync run. Failed marks runs aborted by a
// fatal error (unreachable API, unreadable checkpoint store); per-record
// errors never set it.
type Result struct {
	TenantID      string
	TenantName    string
	Customers     Stats
	Pets          Stats
	Reservations  Stats
	Failed        bool
	FailureReason string
}

// Totals aggregates the per-kind stats.
func (r Result) Totals() Stats {
	var totals Stats
	totals.Merge(r.Customers)
	totals.Merge(r.Pets)
	totals.Merge(r.Reservations)
	return totals
}

// Clean reports whether the run finished without fatal or per-record errors.
func (r Result) Clean() bool {
	return !r.Failed && r.Totals().Errored == 0
}

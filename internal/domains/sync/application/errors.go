package application

import (
	"fmt"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
)

// StageError marks a fatal failure of one entity-kind stage within a tenant
// run. The stage's checkpoint stays intact, so retrying the tenant resumes
// where the stage stopped.
type StageError struct {
	TenantID string
	Stage    domain.EntityKind
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("sync tenant %s: %s stage: %v", e.TenantID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

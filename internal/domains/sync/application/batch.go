package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
	"github.com/tailtown/gingrsync/internal/domains/sync/ports"
)

// defaultBatchSize bounds one page fetch when the caller does not override it.
const defaultBatchSize = 100

// ProcessBatch handles one page of external records. Per-record failures
// must be folded into the returned stats; the processor never aborts a run
// for them.
type ProcessBatch func(ctx context.Context, records []domain.ExternalRecord) domain.Stats

// Processor iterates an external collection in bounded batches, persisting
// a checkpoint after every committed batch so an interrupted run resumes at
// the last offset instead of restarting. Batch boundaries are the only
// suspension points: cancellation is honored before each page fetch, and a
// fully committed batch is never reprocessed.
type Processor struct {
	directory   ports.Directory
	checkpoints ports.CheckpointStore
	batchSize   int
}

// NewProcessor wires a batch processor for one tenant's directory.
func NewProcessor(directory ports.Directory, checkpoints ports.CheckpointStore, batchSize int) *Processor {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Processor{directory: directory, checkpoints: checkpoints, batchSize: batchSize}
}

// Run drives the import of one entity kind to completion. On success the
// checkpoint is cleared; on a page-fetch failure or cancellation the
// checkpoint stays intact for a later resume and the accumulated stats are
// returned alongside the error.
func (p *Processor) Run(ctx context.Context, tenantID string, kind domain.EntityKind, process ProcessBatch) (domain.Stats, error) {
	stats, offset, err := p.resume(ctx, tenantID, kind)
	if err != nil {
		return domain.Stats{}, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("%s sync cancelled at offset %d: %w", kind, offset, err)
		}

		page, err := p.directory.FetchPage(ctx, kind, offset, p.batchSize)
		if err != nil {
			return stats, fmt.Errorf("fetch %s page at offset %d: %w", kind, offset, err)
		}

		if len(page.Records) > 0 {
			batchStats := process(ctx, page.Records)
			stats.Merge(batchStats)
			offset += len(page.Records)
			if err := p.checkpoints.Put(ctx, domain.Checkpoint{
				TenantID:   tenantID,
				Kind:       kind,
				NextOffset: offset,
				Stats:      stats,
			}); err != nil {
				return stats, fmt.Errorf("persist %s checkpoint at offset %d: %w", kind, offset, err)
			}
		}

		if page.Done || len(page.Records) == 0 {
			if err := p.checkpoints.Clear(ctx, tenantID, kind); err != nil {
				return stats, fmt.Errorf("clear %s checkpoint: %w", kind, err)
			}
			return stats, nil
		}
	}
}

// resume loads the last committed checkpoint, if any. An unreadable
// checkpoint store is fatal: restarting from zero behind its back would
// reprocess committed work.
func (p *Processor) resume(ctx context.Context, tenantID string, kind domain.EntityKind) (domain.Stats, int, error) {
	checkpoint, err := p.checkpoints.Get(ctx, tenantID, kind)
	if errors.Is(err, ports.ErrNoCheckpoint) {
		return domain.Stats{}, 0, nil
	}
	if err != nil {
		return domain.Stats{}, 0, fmt.Errorf("read %s checkpoint: %w", kind, err)
	}
	return checkpoint.Stats, checkpoint.NextOffset, nil
}

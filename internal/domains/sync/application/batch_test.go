package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	syncmem "github.com/tailtown/gingrsync/internal/domains/sync/adapters/memory"
	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
	"github.com/tailtown/gingrsync/internal/domains/sync/ports"
)

func seedOwners(directory *fakeDirectory, count int) {
	records := make([]domain.ExternalRecord, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, ownerRecord(fmt.Sprintf("o-%03d", i), "Owner", fmt.Sprintf("N%03d", i)))
	}
	directory.records[domain.KindCustomer] = records
}

// recordingProcess counts each record id it sees.
type recordingProcess struct {
	mu   sync.Mutex
	seen map[string]int
}

func newRecordingProcess() *recordingProcess {
	return &recordingProcess{seen: map[string]int{}}
}

func (p *recordingProcess) process(_ context.Context, records []domain.ExternalRecord) domain.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	var stats domain.Stats
	for _, record := range records {
		p.seen[record.ExternalID]++
		stats.Apply(domain.Created())
	}
	return stats
}

func TestProcessorRunsToCompletionAndClearsCheckpoint(t *testing.T) {
	directory := newFakeDirectory()
	seedOwners(directory, 250)
	checkpoints := syncmem.NewCheckpointStore()
	processor := NewProcessor(directory, checkpoints, 20)
	recorder := newRecordingProcess()

	stats, err := processor.Run(context.Background(), testTenantID, domain.KindCustomer, recorder.process)
	require.NoError(t, err)
	require.Equal(t, 250, stats.Processed())
	require.Equal(t, 13, directory.fetchCount(domain.KindCustomer))

	_, err = checkpoints.Get(context.Background(), testTenantID, domain.KindCustomer)
	require.ErrorIs(t, err, ports.ErrNoCheckpoint)
}

func TestProcessorResumesAfterPageFetchFailure(t *testing.T) {
	directory := newFakeDirectory()
	seedOwners(directory, 250)
	directory.failAt(domain.KindCustomer, 140, 1)
	checkpoints := syncmem.NewCheckpointStore()
	processor := NewProcessor(directory, checkpoints, 20)
	recorder := newRecordingProcess()
	ctx := context.Background()

	stats, err := processor.Run(ctx, testTenantID, domain.KindCustomer, recorder.process)
	require.Error(t, err)
	require.Equal(t, 140, stats.Processed())

	checkpoint, err := checkpoints.Get(ctx, testTenantID, domain.KindCustomer)
	require.NoError(t, err)
	require.Equal(t, 140, checkpoint.NextOffset)

	stats, err = processor.Run(ctx, testTenantID, domain.KindCustomer, recorder.process)
	require.NoError(t, err)
	require.Equal(t, 250, stats.Processed())

	require.Len(t, recorder.seen, 250)
	for id, count := range recorder.seen {
		require.Equalf(t, 1, count, "record %s processed %d times", id, count)
	}

	_, err = checkpoints.Get(ctx, testTenantID, domain.KindCustomer)
	require.ErrorIs(t, err, ports.ErrNoCheckpoint)
}

func TestProcessorCancellationKeepsCheckpoint(t *testing.T) {
	directory := newFakeDirectory()
	seedOwners(directory, 60)
	checkpoints := syncmem.NewCheckpointStore()
	processor := NewProcessor(directory, checkpoints, 20)
	ctx, cancel := context.WithCancel(context.Background())

	pages := 0
	process := func(_ context.Context, records []domain.ExternalRecord) domain.Stats {
		pages++
		if pages == 2 {
			cancel()
		}
		var stats domain.Stats
		for range records {
			stats.Apply(domain.Unchanged())
		}
		return stats
	}

	stats, err := processor.Run(ctx, testTenantID, domain.KindCustomer, process)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 40, stats.Processed())

	checkpoint, err := checkpoints.Get(context.Background(), testTenantID, domain.KindCustomer)
	require.NoError(t, err)
	require.Equal(t, 40, checkpoint.NextOffset)
}

func TestProcessorPerRecordErrorsDoNotAbort(t *testing.T) {
	directory := newFakeDirectory()
	seedOwners(directory, 30)
	processor := NewProcessor(directory, syncmem.NewCheckpointStore(), 10)

	process := func(_ context.Context, records []domain.ExternalRecord) domain.Stats {
		var stats domain.Stats
		for i, record := range records {
			if i == 0 {
				stats.Apply(domain.Errored("bad record " + record.ExternalID))
				continue
			}
			stats.Apply(domain.Created())
		}
		return stats
	}

	stats, err := processor.Run(context.Background(), testTenantID, domain.KindCustomer, process)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Errored)
	require.Equal(t, 27, stats.Created)
	require.Len(t, stats.Errors, 3)
}

type erroringCheckpointStore struct{}

func (erroringCheckpointStore) Get(context.Context, string, domain.EntityKind) (*domain.Checkpoint, error) {
	return nil, errors.New("disk gone")
}

func (erroringCheckpointStore) Put(context.Context, domain.Checkpoint) error {
	return errors.New("disk gone")
}

func (erroringCheckpointStore) Clear(context.Context, string, domain.EntityKind) error {
	return errors.New("disk gone")
}

func TestProcessorFailsFastOnUnreadableCheckpointStore(t *testing.T) {
	directory := newFakeDirectory()
	seedOwners(directory, 10)
	processor := NewProcessor(directory, erroringCheckpointStore{}, 10)

	_, err := processor.Run(context.Background(), testTenantID, domain.KindCustomer, newRecordingProcess().process)
	require.Error(t, err)
	require.Equal(t, 0, directory.fetchCount(domain.KindCustomer))
}

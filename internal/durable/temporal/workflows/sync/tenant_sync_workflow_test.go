package sync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
)

func newTestEnvironment(t *testing.T) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(TenantSyncWorkflow, workflow.RegisterOptions{Name: TenantSyncWorkflowName})
	return env
}

func TestTenantSyncWorkflowReturnsActivityResult(t *testing.T) {
	env := newTestEnvironment(t)
	stub := func(tenantID string) (domain.Result, error) {
		return domain.Result{TenantID: tenantID, Customers: domain.Stats{Created: 2}}, nil
	}
	env.RegisterActivityWithOptions(stub, activity.RegisterOptions{Name: "sync.activities.SyncTenant"})

	env.ExecuteWorkflow(TenantSyncWorkflowName, TenantSyncWorkflowInput{TenantID: "tenant-1"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	var result domain.Result
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, "tenant-1", result.TenantID)
	require.Equal(t, 2, result.Customers.Created)
}

func TestTenantSyncWorkflowPropagatesActivityFailure(t *testing.T) {
	env := newTestEnvironment(t)
	stub := func(tenantID string) (domain.Result, error) {
		return domain.Result{}, errors.New("tenant lookup failed")
	}
	env.RegisterActivityWithOptions(stub, activity.RegisterOptions{Name: "sync.activities.SyncTenant"})

	env.ExecuteWorkflow(TenantSyncWorkflowName, TenantSyncWorkflowInput{TenantID: "tenant-1"})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	require.Contains(t, err.Error(), "tenant lookup failed")
}

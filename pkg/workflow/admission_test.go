package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dukex/flowrun/pkg/models"
	"github.com/dukex/flowrun/pkg/persistence/file"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmissionController_RejectsAtLimit(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	controller := NewAdmissionController(p.ExecutionRepository())

	wf := &models.Workflow{ID: "wf-1", MaxConcurrentRuns: 1}

	running := &models.WorkflowExecution{
		ID:         uuid.New().String(),
		WorkflowID: wf.ID,
		Status:     models.ExecutionStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	require.NoError(t, p.ExecutionRepository().SaveExecution(context.Background(), running))

	err := controller.Admit(context.Background(), wf, func(ctx context.Context) error {
		t.Fatal("create must not be called past the limit")

		return nil
	})

	var limitErr *ConcurrencyLimitError

	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, "wf-1", limitErr.WorkflowID)
	assert.Equal(t, 1, limitErr.Current)
	assert.Equal(t, 1, limitErr.Limit)
}

func TestAdmissionController_TerminalExecutionsFreeSlots(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	controller := NewAdmissionController(p.ExecutionRepository())

	wf := &models.Workflow{ID: "wf-1", MaxConcurrentRuns: 1}

	finished := &models.WorkflowExecution{
		ID:         uuid.New().String(),
		WorkflowID: wf.ID,
		Status:     models.ExecutionStatusCompleted,
		StartedAt:  time.Now().UTC(),
	}
	require.NoError(t, p.ExecutionRepository().SaveExecution(context.Background(), finished))

	created := false
	err := controller.Admit(context.Background(), wf, func(ctx context.Context) error {
		created = true

		return nil
	})

	require.NoError(t, err)
	assert.True(t, created)
}

func TestAdmissionController_ConcurrentAdmitsAdmitExactlyOne(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	controller := NewAdmissionController(p.ExecutionRepository())

	wf := &models.Workflow{ID: "wf-1", MaxConcurrentRuns: 1}

	const attempts = 20

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)

	for range attempts {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := controller.Admit(context.Background(), wf, func(ctx context.Context) error {
				execution := &models.WorkflowExecution{
					ID:         uuid.New().String(),
					WorkflowID: wf.ID,
					Status:     models.ExecutionStatusRunning,
					StartedAt:  time.Now().UTC(),
				}

				return p.ExecutionRepository().SaveExecution(ctx, execution)
			})
			if err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, admitted)

	count, err := p.ExecutionRepository().CountRunning(context.Background(), wf.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

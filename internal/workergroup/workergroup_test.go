package workergroup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surendratiwari3/taskexec/schema"
	appError "github.com/surendratiwari3/taskexec/schema/errors"
)

type recordingProcessor struct {
	mu   sync.Mutex
	seen []string
	wg   sync.WaitGroup
	err  error
}

func (p *recordingProcessor) Process(job Job) error {
	defer p.wg.Done()
	p.mu.Lock()
	p.seen = append(p.seen, job.Task.ID())
	p.mu.Unlock()
	return p.err
}

func newJob(name string) Job {
	consumer := schema.TaskConsumerFunc{
		LaunchReasons: []string{schema.ReasonManual},
		Fn: func(ctx context.Context, task schema.Task, trigger *schema.Trigger) (interface{}, error) {
			return nil, nil
		},
	}
	return Job{
		Ctx:     context.Background(),
		Task:    schema.NewBackgroundTask("app", name, "", consumer, nil),
		Trigger: schema.NewTrigger(schema.ReasonManual, nil),
	}
}

func TestWorkerGroup_AssignJob(t *testing.T) {
	processor := &recordingProcessor{err: errors.New("some error")}
	wrkGrp := NewWorkerGroup(4, processor, "test")
	assert.Equal(t, "test", wrkGrp.GetWorkerGroupName())

	wrkGrp.Start()
	const n = 20
	processor.wg.Add(n)
	for i := 0; i < n; i++ {
		require.NoError(t, wrkGrp.AssignJob(newJob(fmt.Sprintf("job-%d", i))))
	}
	processor.wg.Wait()
	wrkGrp.Stop()

	processor.mu.Lock()
	defer processor.mu.Unlock()
	assert.Len(t, processor.seen, n)
}

func TestWorkerGroup_AssignBeforeStartAndAfterStop(t *testing.T) {
	processor := &recordingProcessor{}
	wrkGrp := NewWorkerGroup(0, processor, "test")

	assert.ErrorIs(t, wrkGrp.AssignJob(newJob("early")), appError.ErrWorkerGroupStopped)

	wrkGrp.Start()
	wrkGrp.Stop()
	wrkGrp.Stop()
	assert.ErrorIs(t, wrkGrp.AssignJob(newJob("late")), appError.ErrWorkerGroupStopped)
}

func TestWorkerGroup_StopUnblocksAssign(t *testing.T) {
	block := make(chan struct{})
	processor := blockingProcessor{block: block}
	wrkGrp := NewWorkerGroup(1, processor, "test")
	wrkGrp.Start()

	require.NoError(t, wrkGrp.AssignJob(newJob("busy")))

	errCh := make(chan error, 1)
	go func() {
		errCh <- wrkGrp.AssignJob(newJob("waiting"))
	}()

	time.Sleep(50 * time.Millisecond)
	go wrkGrp.Stop()
	close(block)

	select {
	case err := <-errCh:
		// the waiting job is either picked up after the busy one returns or rejected by Stop
		if err != nil {
			assert.ErrorIs(t, err, appError.ErrWorkerGroupStopped)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("AssignJob still blocked after Stop")
	}
}

type blockingProcessor struct {
	block chan struct{}
}

func (p blockingProcessor) Process(job Job) error {
	<-p.block
	return nil
}

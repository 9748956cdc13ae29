package workergroup

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/surendratiwari3/taskexec/logger"
	"github.com/surendratiwari3/taskexec/schema"
	appError "github.com/surendratiwari3/taskexec/schema/errors"
)

// Job is one task execution on behalf of a trigger
type Job struct {
	Ctx       context.Context
	RequestID string
	Task      schema.Task
	Trigger   *schema.Trigger
}

// JobProcessor executes jobs handed out by the worker group
type JobProcessor interface {
	Process(job Job) error
}

type WorkerGroupInterface interface {
	GetWorkerGroupName() string
	AssignJob(job Job) error
	Stop()
	Start()
}

// Worker represents a worker that processes jobs.
type worker struct {
	ID         uint
	JobChannel chan Job
}

type workerGroup struct {
	Namespace               string
	Concurrency             uint
	Workers                 []*worker
	Processor               JobProcessor
	lastAssignedWorkerIndex int
	mu                      sync.Mutex
	started                 bool
	stopped                 bool
	quit                    chan struct{}
	running                 sync.WaitGroup
}

// NewWorkerGroup - create a workergroup
func NewWorkerGroup(concurrency uint, processor JobProcessor, namespace string) WorkerGroupInterface {
	if concurrency == 0 {
		concurrency = 1
	}
	wrkGrp := &workerGroup{
		Concurrency: concurrency,
		Processor:   processor,
		Namespace:   namespace,
		quit:        make(chan struct{}),
	}
	for i := uint(0); i < concurrency; i++ {
		wrkGrp.Workers = append(wrkGrp.Workers, &worker{
			ID:         i,
			JobChannel: make(chan Job),
		})
	}

	return wrkGrp
}

func (wg *workerGroup) Start() {
	wg.mu.Lock()
	defer wg.mu.Unlock()
	if wg.started || wg.stopped {
		return
	}
	wg.started = true
	for _, wrk := range wg.Workers {
		wg.running.Add(1)
		go wg.work(wrk)
	}
}

// Stop signals all workers and waits for in-flight jobs to return.
func (wg *workerGroup) Stop() {
	wg.mu.Lock()
	if wg.stopped {
		wg.mu.Unlock()
		return
	}
	wg.stopped = true
	close(wg.quit)
	wg.mu.Unlock()
	wg.running.Wait()
}

func (wg *workerGroup) work(wrk *worker) {
	defer wg.running.Done()
	for {
		select {
		case <-wg.quit:
			return
		case job := <-wrk.JobChannel:
			if err := wg.Processor.Process(job); err != nil {
				logger.ApplicationLogger.WithFields(logrus.Fields{"worker": wrk.ID, "task": job.Task.ID()}).WithError(err).Error("error while executing task")
			}
		}
	}
}

// AssignJob assigns a job to a worker in a round-robin fashion. It blocks until the
// selected worker picks the job up or the group is stopped.
func (wg *workerGroup) AssignJob(job Job) error {
	wg.mu.Lock()
	if wg.stopped || !wg.started {
		wg.mu.Unlock()
		return appError.ErrWorkerGroupStopped
	}
	wg.lastAssignedWorkerIndex = (wg.lastAssignedWorkerIndex + 1) % len(wg.Workers)
	selectedWorker := wg.Workers[wg.lastAssignedWorkerIndex]
	wg.mu.Unlock()

	select {
	case selectedWorker.JobChannel <- job:
		return nil
	case <-wg.quit:
		return appError.ErrWorkerGroupStopped
	}
}

func (wg *workerGroup) GetWorkerGroupName() string {
	return wg.Namespace
}

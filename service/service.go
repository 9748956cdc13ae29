package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/internal/broker"
	"github.com/surendratiwari3/taskexec/internal/factory"
	"github.com/surendratiwari3/taskexec/internal/store"
	"github.com/surendratiwari3/taskexec/internal/task"
	"github.com/surendratiwari3/taskexec/internal/validation"
	"github.com/surendratiwari3/taskexec/internal/workergroup"
	"github.com/surendratiwari3/taskexec/logger"
	"github.com/surendratiwari3/taskexec/request"
	"github.com/surendratiwari3/taskexec/schema"
	appErrors "github.com/surendratiwari3/taskexec/schema/errors"
)

// TaskService owns the task registry and runs registered tasks for incoming triggers
type TaskService struct {
	config        *config.Config
	factory       factory.IFactory
	broker        broker.Broker
	backend       store.Backend
	taskRegistrar task.TaskRegistrarInterface
	workers       workergroup.WorkerGroupInterface
	serviceID     string
	nameSpace     string

	mu       sync.Mutex
	inFlight []*request.ExecutionRequest
	stopped  bool
	stopCh   chan struct{}
	stopOnce sync.Once

	beforeStop func(ctx context.Context) error
}

type Option func(*TaskService)

// WithFactory replaces the factory used to build the broker, store and registry
func WithFactory(f factory.IFactory) Option {
	return func(s *TaskService) {
		s.factory = f
	}
}

// WithNameSpace names the worker group, "taskexec" by default
func WithNameSpace(nameSpace string) Option {
	return func(s *TaskService) {
		s.nameSpace = nameSpace
	}
}

// WithBeforeStop runs fn at the start of Stop, while the service still accepts
// triggers and its workers and store are up. Servers in front of the service
// drain their requests here.
func WithBeforeStop(fn func(ctx context.Context) error) Option {
	return func(s *TaskService) {
		s.beforeStop = fn
	}
}

// NewTaskService creates the service from the global config and starts its workers
func NewTaskService(ctx context.Context, opts ...Option) (Service, error) {
	cnf := config.GetConfigProvider().GetConfig()
	if cnf == nil {
		return nil, appErrors.ErrNilConfig
	}

	svc := &TaskService{
		config:    cnf,
		serviceID: uuid.New().String(),
		nameSpace: "taskexec",
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.factory == nil {
		svc.factory = factory.NewFactory()
	}

	factoryBroker, err := svc.factory.CreateBroker()
	if err != nil {
		logger.ApplicationLogger.WithError(err).Error("broker creation failed")
		return nil, err
	}
	svc.broker = factoryBroker

	backend, err := svc.factory.CreateStore(ctx)
	if err != nil {
		logger.ApplicationLogger.WithError(err).Error("store creation failed")
		svc.closeBroker()
		return nil, err
	}
	svc.backend = backend

	taskRegistrar := svc.factory.CreateTaskRegistrar()
	if taskRegistrar == nil {
		logger.ApplicationLogger.Error("task registrar creation failed")
		svc.closeBroker()
		return nil, errors.New("failed to create the task registrar")
	}
	svc.taskRegistrar = taskRegistrar

	svc.workers = workergroup.NewWorkerGroup(cnf.Concurrency, svc, svc.nameSpace)
	svc.workers.Start()

	return svc, nil
}

func (s *TaskService) RegisterTask(appID, name, appURL string, consumer schema.TaskConsumer, options map[string]interface{}) (schema.Task, error) {
	return s.taskRegistrar.RegisterTask(appID, name, appURL, consumer, options)
}

func (s *TaskService) UnregisterTask(appID, name string) error {
	return s.taskRegistrar.UnregisterTask(appID, name)
}

func (s *TaskService) UnregisterAllTasks(appID string) int {
	return s.taskRegistrar.UnregisterAllTasks(appID)
}

func (s *TaskService) GetTask(appID, name string) (schema.Task, error) {
	return s.taskRegistrar.GetTask(appID, name)
}

func (s *TaskService) IsTaskRegistered(appID, name string) bool {
	return s.taskRegistrar.IsTaskRegistered(appID, name)
}

func (s *TaskService) TasksForApp(appID string) []schema.Task {
	return s.taskRegistrar.TasksForApp(appID)
}

func (s *TaskService) GetBroker() broker.Broker {
	return s.broker
}

func (s *TaskService) GetBackend() store.Backend {
	return s.backend
}

// RunTasks starts every registered task matching trigger under a new execution request.
// callback receives the collected results once all of them have reported; it fires before
// RunTasks returns when nothing matches.
func (s *TaskService) RunTasks(ctx context.Context, trigger *schema.Trigger, callback request.Callback) (*request.ExecutionRequest, error) {
	if callback == nil {
		return nil, appErrors.ErrNilCallback
	}
	if err := s.validateTrigger(trigger); err != nil {
		return nil, err
	}
	if s.isStopped() {
		return nil, appErrors.ErrServiceStopped
	}

	var req *request.ExecutionRequest
	req, err := request.NewExecutionRequest(func(results []interface{}) {
		s.requestFinished(req, trigger, results)
		callback(results)
	})
	if err != nil {
		return nil, err
	}

	for _, t := range s.taskRegistrar.TasksForTrigger(trigger) {
		req.AddTask(t)
	}
	s.addInFlight(req)

	logger.ApplicationLogger.WithFields(logrus.Fields{"trigger": trigger.UUID, "reason": trigger.Reason, "request": req.ID(), "tasks": len(req.Tasks())}).Info("running tasks for trigger")

	for _, t := range req.Tasks() {
		job := workergroup.Job{Ctx: ctx, RequestID: req.ID(), Task: t, Trigger: trigger}
		if err := s.workers.AssignJob(job); err != nil {
			logger.ApplicationLogger.WithFields(logrus.Fields{"request": req.ID(), "task": t.ID()}).WithError(err).Error("failed to dispatch task")
			req.TaskDidFinishWithResult(t, normalizeResult(t, nil, err))
		}
	}
	req.MaybeEvaluate()

	return req, nil
}

type execution struct {
	result interface{}
	err    error
}

// Process executes one task on a worker and reports its result. A consumer that
// outlives ExecutionTimeout is reported as failed and the worker moves on while
// the consumer finishes in the background.
func (s *TaskService) Process(job workergroup.Job) error {
	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.ExecutionTimeout)
	defer cancel()

	finished := make(chan execution, 1)
	go func() {
		result, err := s.execute(ctx, job)
		finished <- execution{result: result, err: err}
	}()

	var result interface{}
	var err error
	select {
	case out := <-finished:
		result, err = out.result, out.err
	case <-ctx.Done():
		err = fmt.Errorf("%w: %v", appErrors.ErrExecutionTimeout, ctx.Err())
	}
	if err != nil {
		err = appErrors.NewTaskError(job.Task.ID(), err)
	}
	s.NotifyTaskFinished(job.Task, result, err)
	return err
}

func (s *TaskService) execute(ctx context.Context, job workergroup.Job) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	consumer := job.Task.Consumer()
	if consumer == nil {
		return nil, appErrors.ErrNilConsumer
	}
	return consumer.Execute(ctx, job.Task, job.Trigger)
}

// NotifyTaskFinished reports the outcome of task to every in-flight request that includes it
func (s *TaskService) NotifyTaskFinished(t schema.Task, result interface{}, err error) {
	if t == nil {
		return
	}
	normalized := normalizeResult(t, result, err)

	for _, req := range s.InFlightRequests() {
		if req.IsIncludingTask(t) {
			req.TaskDidFinishWithResult(t, normalized)
		}
	}
	s.pruneInFlight()
}

// InFlightRequests returns the requests still waiting on at least one task
func (s *TaskService) InFlightRequests() []*request.ExecutionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	requests := make([]*request.ExecutionRequest, 0, len(s.inFlight))
	for _, req := range s.inFlight {
		if !req.Done() {
			requests = append(requests, req)
		}
	}
	return requests
}

func (s *TaskService) GetRequestRecord(ctx context.Context, requestID string) (*schema.RequestRecord, error) {
	return s.backend.GetRequest(ctx, requestID)
}

// SendTrigger publishes trigger to the broker so that a consumer runs it
func (s *TaskService) SendTrigger(ctx context.Context, trigger *schema.Trigger) error {
	if s.broker == nil {
		return appErrors.ErrUnsupportedBroker
	}
	if trigger != nil && trigger.UUID == "" {
		trigger.UUID = fmt.Sprintf("trigger_%v", uuid.New().String())
	}
	if trigger != nil && trigger.CreatedAt.IsZero() {
		trigger.CreatedAt = time.Now().UTC()
	}
	if err := s.validateTrigger(trigger); err != nil {
		return err
	}

	if err := s.broker.Publish(ctx, trigger); err != nil {
		return fmt.Errorf("publish trigger error: %w", err)
	}
	return nil
}

// Start consumes triggers from the broker until SIGINT/SIGTERM or Stop
func (s *TaskService) Start() error {
	if s.isStopped() {
		return appErrors.ErrServiceStopped
	}
	logger.ApplicationLogger.WithFields(logrus.Fields{"service": s.serviceID}).Info("task service started")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumerErr := make(chan error, 1)
	if s.broker != nil {
		go func() {
			consumerErr <- s.broker.StartConsumer(ctx, s.consumerTag(), s.handleTrigger(ctx))
		}()
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	var err error
	select {
	case sig := <-signalChan:
		logger.ApplicationLogger.WithFields(logrus.Fields{"signal": sig.String()}).Info("signal received, stopping task service")
	case <-s.stopCh:
	case err = <-consumerErr:
		if err != nil {
			logger.ApplicationLogger.WithError(err).Error("consumer failed")
		}
	}

	s.Stop()
	return err
}

// Stop stops consuming, waits for running tasks and releases the broker and store
func (s *TaskService) Stop() {
	s.stopOnce.Do(func() {
		if s.beforeStop != nil {
			drainCtx, cancel := context.WithTimeout(context.Background(), 2*s.config.ExecutionTimeout)
			if err := s.beforeStop(drainCtx); err != nil {
				logger.ApplicationLogger.WithError(err).Error("before stop hook failed")
			}
			cancel()
		}

		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		close(s.stopCh)

		s.closeBroker()
		s.workers.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), s.config.ExecutionTimeout)
		defer cancel()
		if s.backend != nil {
			if err := s.backend.Close(ctx); err != nil {
				logger.ApplicationLogger.WithError(err).Error("failed to close store")
			}
		}
		logger.ApplicationLogger.WithFields(logrus.Fields{"service": s.serviceID}).Info("task service stopped")
	})
}

func (s *TaskService) handleTrigger(ctx context.Context) broker.TriggerHandler {
	return func(trigger *schema.Trigger) error {
		_, err := s.RunTasks(ctx, trigger, func(results []interface{}) {
			logger.ApplicationLogger.WithFields(logrus.Fields{"trigger": trigger.UUID, "result": schema.AggregateFetchResults(results).String()}).Info("trigger finished")
		})
		return err
	}
}

func (s *TaskService) requestFinished(req *request.ExecutionRequest, trigger *schema.Trigger, results []interface{}) {
	s.removeInFlight(req)

	taskIDs := make([]string, 0)
	for _, t := range req.Tasks() {
		taskIDs = append(taskIDs, t.ID())
	}
	record := &schema.RequestRecord{
		ID:          req.ID(),
		Trigger:     *trigger,
		TaskIDs:     taskIDs,
		Results:     results,
		FetchResult: schema.AggregateFetchResults(results).String(),
		StartedAt:   req.CreatedAt(),
		FinishedAt:  time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ExecutionTimeout)
	defer cancel()
	if err := s.backend.InsertRequest(ctx, record); err != nil {
		logger.ApplicationLogger.WithFields(logrus.Fields{"request": req.ID()}).WithError(err).Error("failed to store execution request")
	}
}

func (s *TaskService) validateTrigger(trigger *schema.Trigger) error {
	return validation.ValidateTrigger(trigger)
}

func (s *TaskService) addInFlight(req *request.ExecutionRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = append(s.inFlight, req)
}

func (s *TaskService) removeInFlight(req *request.ExecutionRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.inFlight {
		if r == req {
			s.inFlight = append(s.inFlight[:i], s.inFlight[i+1:]...)
			return
		}
	}
}

func (s *TaskService) pruneInFlight() {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.inFlight[:0]
	for _, r := range s.inFlight {
		if !r.Done() {
			kept = append(kept, r)
		}
	}
	s.inFlight = kept
}

func (s *TaskService) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *TaskService) closeBroker() {
	if s.broker == nil {
		return
	}
	if err := s.broker.Close(); err != nil {
		logger.ApplicationLogger.WithError(err).Error("failed to close broker")
	}
}

func (s *TaskService) consumerTag() string {
	return fmt.Sprintf("%s-%s", s.nameSpace, s.serviceID)
}

// normalizeResult maps a raw execution outcome to the value reported to requests
func normalizeResult(t schema.Task, result interface{}, err error) interface{} {
	if normalizer, ok := t.Consumer().(schema.ResultNormalizer); ok {
		return normalizer.NormalizeResult(t, result, err)
	}
	if err != nil {
		return schema.FetchResultFailed
	}
	return result
}

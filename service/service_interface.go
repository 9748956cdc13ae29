package service

import (
	"context"

	"github.com/surendratiwari3/taskexec/internal/broker"
	"github.com/surendratiwari3/taskexec/internal/store"
	"github.com/surendratiwari3/taskexec/request"
	"github.com/surendratiwari3/taskexec/schema"
)

type Service interface {
	RegisterTask(appID, name, appURL string, consumer schema.TaskConsumer, options map[string]interface{}) (schema.Task, error)
	UnregisterTask(appID, name string) error
	UnregisterAllTasks(appID string) int
	GetTask(appID, name string) (schema.Task, error)
	IsTaskRegistered(appID, name string) bool
	TasksForApp(appID string) []schema.Task

	RunTasks(ctx context.Context, trigger *schema.Trigger, callback request.Callback) (*request.ExecutionRequest, error)
	NotifyTaskFinished(task schema.Task, result interface{}, err error)
	InFlightRequests() []*request.ExecutionRequest
	GetRequestRecord(ctx context.Context, requestID string) (*schema.RequestRecord, error)

	SendTrigger(ctx context.Context, trigger *schema.Trigger) error
	GetBroker() broker.Broker
	GetBackend() store.Backend
	Start() error
	Stop()
}

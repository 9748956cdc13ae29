package main

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/logger"
	"github.com/surendratiwari3/taskexec/schema"
	"github.com/surendratiwari3/taskexec/service"
)

// Registers two in-process tasks and runs them once for a background fetch.
func main() {
	logger.ApplicationLogger = logrus.StandardLogger()
	cnf := config.Config{
		Concurrency:      4,
		ExecutionTimeout: 5 * time.Second,
	}
	if err := config.GetConfigProvider().SetApplicationConfig(cnf); err != nil {
		logger.ApplicationLogger.WithError(err).Error("config error")
		os.Exit(1)
	}

	svc, err := service.NewTaskService(context.Background())
	if err != nil {
		logger.ApplicationLogger.WithError(err).Error("task service is not created")
		os.Exit(1)
	}
	defer svc.Stop()

	_, err = svc.RegisterTask("news", "refresh-feed", "", schema.TaskConsumerFunc{
		LaunchReasons: []string{schema.ReasonBackgroundFetch},
		Fn: func(ctx context.Context, task schema.Task, trigger *schema.Trigger) (interface{}, error) {
			time.Sleep(100 * time.Millisecond)
			return schema.FetchResultNewData, nil
		},
	}, nil)
	if err != nil {
		logger.ApplicationLogger.WithError(err).Error("task registration failed")
		os.Exit(1)
	}

	_, err = svc.RegisterTask("news", "prune-cache", "", schema.TaskConsumerFunc{
		LaunchReasons: []string{schema.ReasonBackgroundFetch, schema.ReasonManual},
		Fn: func(ctx context.Context, task schema.Task, trigger *schema.Trigger) (interface{}, error) {
			return schema.FetchResultNoData, nil
		},
	}, nil)
	if err != nil {
		logger.ApplicationLogger.WithError(err).Error("task registration failed")
		os.Exit(1)
	}

	done := make(chan struct{})
	_, err = svc.RunTasks(context.Background(), schema.NewTrigger(schema.ReasonBackgroundFetch, nil), func(results []interface{}) {
		logger.ApplicationLogger.WithFields(logrus.Fields{"results": len(results), "fetch_result": schema.AggregateFetchResults(results).String()}).Info("background fetch finished")
		close(done)
	})
	if err != nil {
		logger.ApplicationLogger.WithError(err).Error("trigger failed")
		os.Exit(1)
	}
	<-done
}

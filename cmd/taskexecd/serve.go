package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/surendratiwari3/taskexec/api"
	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/logger"
	"github.com/surendratiwari3/taskexec/service"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and consume queued triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cnf := config.GetConfig()

	// the http api drains before the service stops its workers and store
	var e *echo.Echo
	svc, err := service.NewTaskService(ctx, service.WithBeforeStop(func(ctx context.Context) error {
		if e == nil {
			return nil
		}
		return e.Shutdown(ctx)
	}))
	if err != nil {
		return err
	}

	e = api.NewServer(svc, &http.Client{})
	go func() {
		logger.ApplicationLogger.WithFields(logrus.Fields{"address": cnf.HTTPAddress}).Info("http api listening")
		if err := e.Start(cnf.HTTPAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ApplicationLogger.WithError(err).Error("http api failed")
			svc.Stop()
		}
	}()

	return svc.Start()
}

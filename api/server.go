// Package api exposes the task service over HTTP
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/surendratiwari3/taskexec/api/handlers"
	"github.com/surendratiwari3/taskexec/logger"
	"github.com/surendratiwari3/taskexec/service"
)

// NewServer builds the echo instance serving /v1/taskexec
func NewServer(svc service.Service, client *http.Client) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.ApplicationLogger.WithFields(logrus.Fields{"method": v.Method, "uri": v.URI, "status": v.Status}).Info("http request")
			return nil
		},
	}))

	RegisterRoutes(e, handlers.NewTaskHandler(svc, client))
	return e
}

func RegisterRoutes(e *echo.Echo, h *handlers.TaskHandler) {
	v1 := e.Group("/v1/taskexec")

	v1.GET("/apps/:app_id/tasks", h.ListTasksHandlerV1)
	v1.DELETE("/apps/:app_id/tasks", h.UnregisterAllTasksHandlerV1)
	v1.GET("/apps/:app_id/tasks/:task_name", h.GetTaskHandlerV1)
	v1.POST("/apps/:app_id/tasks/:task_name", h.RegisterTaskHandlerV1)
	v1.DELETE("/apps/:app_id/tasks/:task_name", h.UnregisterTaskHandlerV1)

	v1.POST("/triggers", h.RunTriggerHandlerV1)
	v1.POST("/triggers/async", h.SendTriggerHandlerV1)
	v1.GET("/requests/:request_id", h.GetRequestHandlerV1)
}

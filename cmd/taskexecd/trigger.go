package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/surendratiwari3/taskexec/logger"
	"github.com/surendratiwari3/taskexec/schema"
	"github.com/surendratiwari3/taskexec/service"
)

type triggerFlags struct {
	reason   string
	appID    string
	taskName string
	data     string
}

func newTriggerCmd() *cobra.Command {
	flags := &triggerFlags{}
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Queue a trigger on the configured broker",
		RunE: func(cmd *cobra.Command, args []string) error {
			trigger, err := buildTrigger(flags)
			if err != nil {
				return err
			}

			svc, err := service.NewTaskService(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Stop()

			if err := svc.SendTrigger(cmd.Context(), trigger); err != nil {
				return err
			}
			logger.ApplicationLogger.WithFields(logrus.Fields{"trigger": trigger.UUID, "reason": trigger.Reason}).Info("trigger queued")
			fmt.Fprintln(cmd.OutOrStdout(), trigger.UUID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.reason, "reason", "r", schema.ReasonManual, "launch reason")
	cmd.Flags().StringVar(&flags.appID, "app-id", "", "only run tasks of this app")
	cmd.Flags().StringVar(&flags.taskName, "task", "", "only run tasks with this name")
	cmd.Flags().StringVar(&flags.data, "data", "", "JSON object passed to the tasks")
	return cmd
}

func buildTrigger(flags *triggerFlags) (*schema.Trigger, error) {
	var data map[string]interface{}
	if flags.data != "" {
		decoder := json.NewDecoder(bytes.NewReader([]byte(flags.data)))
		decoder.UseNumber()
		if err := decoder.Decode(&data); err != nil {
			return nil, fmt.Errorf("invalid --data: %w", err)
		}
	}

	trigger := schema.NewTrigger(flags.reason, data)
	trigger.AppID = flags.appID
	trigger.TaskName = flags.taskName
	return trigger, nil
}

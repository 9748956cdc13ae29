package main

import (
	"github.com/spf13/cobra"
	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/logger"
)

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "taskexecd",
		Short:         "Run registered background tasks when a trigger fires",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cfgFile)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file; TASKEXEC_* environment variables are read either way")

	rootCmd.AddCommand(newServeCmd(), newTriggerCmd())
	return rootCmd
}

func loadConfig(cfgFile string) error {
	provider := config.GetConfigProvider()
	var err error
	if cfgFile != "" {
		err = provider.ReadFromFile(cfgFile)
	} else {
		err = provider.ReadFromEnv()
	}
	if err != nil {
		return err
	}
	return logger.SetLevel(provider.GetConfig().LogLevel)
}

package main

import (
	"os"

	"github.com/surendratiwari3/taskexec/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.ApplicationLogger.WithError(err).Error("taskexecd failed")
		os.Exit(1)
	}
}

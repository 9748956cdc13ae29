package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/schema"
)

func TestBuildTrigger(t *testing.T) {
	trigger, err := buildTrigger(&triggerFlags{
		reason:   schema.ReasonLocation,
		appID:    "app",
		taskName: "track",
		data:     `{"lat": 52.5, "count": 3}`,
	})
	require.NoError(t, err)
	assert.Equal(t, schema.ReasonLocation, trigger.Reason)
	assert.Equal(t, "app", trigger.AppID)
	assert.Equal(t, "track", trigger.TaskName)
	assert.Equal(t, json.Number("3"), trigger.Data["count"])
	assert.NotEmpty(t, trigger.UUID)

	_, err = buildTrigger(&triggerFlags{reason: schema.ReasonManual, data: "{"})
	assert.Error(t, err)
}

func TestRootCommand(t *testing.T) {
	rootCmd := newRootCmd()
	names := []string{}
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "trigger"}, names)

	triggerCmd, _, err := rootCmd.Find([]string{"trigger"})
	require.NoError(t, err)
	reason, err := triggerCmd.Flags().GetString("reason")
	require.NoError(t, err)
	assert.Equal(t, schema.ReasonManual, reason)
}

func TestLoadConfig(t *testing.T) {
	previous := config.GetConfigProvider()
	t.Cleanup(func() { config.SetConfigProvider(previous) })

	mockConfigProvider := new(config.MockConfigProvider)
	mockConfigProvider.On("ReadFromFile", "taskexec.yaml").Return(nil)
	mockConfigProvider.On("ReadFromEnv").Return(nil)
	mockConfigProvider.On("GetConfig").Return(&config.Config{LogLevel: "debug"})
	config.SetConfigProvider(mockConfigProvider)

	require.NoError(t, loadConfig("taskexec.yaml"))
	require.NoError(t, loadConfig(""))
	mockConfigProvider.AssertCalled(t, "ReadFromFile", "taskexec.yaml")
	mockConfigProvider.AssertCalled(t, "ReadFromEnv")
}

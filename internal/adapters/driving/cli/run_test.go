package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCmd_Use(t *testing.T) {
	assert.Equal(t, "run", runCmd.Use)
}

func TestRunCmd_Short(t *testing.T) {
	assert.Equal(t, "Run scheduled syncs in the foreground", runCmd.Short)
}

func TestRunCmd_HasWatchFlag(t *testing.T) {
	flag := runCmd.Flags().Lookup("watch")

	require.NotNil(t, flag)
	assert.Equal(t, "w", flag.Shorthand)
}

func TestRunCmd_StartsAndStopsScheduler(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	scheduler := &mockScheduler{}
	schedulerService = scheduler

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"run"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Scheduler running.")
	assert.Equal(t, 1, scheduler.started)
	assert.Equal(t, 1, scheduler.stopped)
}

func TestRunCmd_SchedulerNotConfigured(t *testing.T) {
	oldScheduler := schedulerService
	schedulerService = nil
	defer func() {
		schedulerService = oldScheduler
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"run"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "scheduler not configured")
}

func TestRunCmd_WatchWithoutWatcher(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	fileWatcher = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"run", "--watch"})
	defer func() {
		rootCmd.SetArgs(nil)
		runWatch = false
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "file watcher not configured")
}

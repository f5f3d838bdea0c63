package main

import (
	"testing"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_HasEveryJob(t *testing.T) {
	root := newRootCmd()
	for _, job := range batch.AllJobs() {
		cmd, _, err := root.Find([]string{string(job)})
		require.NoError(t, err)
		assert.Equal(t, string(job), cmd.Name())
		assert.NotNil(t, cmd.Flags().Lookup("period"))
		assert.NotNil(t, cmd.Flags().Lookup("dry-run"))
	}
	for _, name := range []string{"tick", "runs", "migrate"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestJobCmd_RejectsMalformedPeriod(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"month-end", "--period", "2025-13-01"})
	root.SilenceErrors = true

	err := root.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "period")
}

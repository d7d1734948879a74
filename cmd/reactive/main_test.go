package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCmd(t *testing.T) {
	t.Run("prints traces", func(t *testing.T) {
		var out bytes.Buffer

		cmd := runCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"../../internal/scenario/testdata/queue.yaml"})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "> flush\neffect sum: a=2 b=2\n")
	})

	t.Run("prints metrics per scenario", func(t *testing.T) {
		var out bytes.Buffer

		cmd := runCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{
			"--metrics",
			"../../internal/scenario/testdata/queue.yaml",
			"../../internal/scenario/testdata/branch.yaml",
		})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "=== queue\n")
		assert.Contains(t, out.String(), "=== branch\n")
		assert.Contains(t, out.String(), `reactive_effect_runs_total{scenario="queue"} 2`)
		assert.Contains(t, out.String(), `reactive_effect_runs_total{scenario="branch"} 3`)
	})

	t.Run("requires a file", func(t *testing.T) {
		cmd := runCmd()
		cmd.SetArgs([]string{})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})

		assert.Error(t, cmd.Execute())
	})
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer

	cmd := versionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--short"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "dev\n", out.String())
}

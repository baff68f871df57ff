package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execCommand runs a command with an optional pre-built CLIContext, capturing
// stdout.
func execCommand(t *testing.T, cmd *cobra.Command, cliCtx *CLIContext, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	ctx := context.Background()
	if cliCtx != nil {
		ctx = context.WithValue(ctx, cliContextKey{}, cliCtx)
	}
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestNewRootCommand_RegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"score", "classify", "evaluate", "tiers", "profiles"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestNewRootCommand_FlagDefaults(t *testing.T) {
	root := NewRootCommand()

	output, err := root.PersistentFlags().GetString("output")
	require.NoError(t, err)
	assert.Equal(t, "text", output)

	server, err := root.PersistentFlags().GetString("server")
	require.NoError(t, err)
	assert.Empty(t, server)
}

func TestGetCLIContext_NotInitialized(t *testing.T) {
	cmd := &cobra.Command{Use: "orphan"}

	_, err := GetCLIContext(cmd)
	assert.Error(t, err)
}

func TestFormatTable(t *testing.T) {
	out := FormatTable(
		[]string{"ID", "NAME"},
		[][]string{{"prof-1", "Harvey Cushing"}, {"prof-2", "Walter Dandy"}},
	)

	assert.Contains(t, out, "ID      NAME")
	assert.Contains(t, out, "------  --------------")
	assert.Contains(t, out, "prof-1  Harvey Cushing")
	assert.Contains(t, out, "prof-2  Walter Dandy")
}

func TestFormatTable_Empty(t *testing.T) {
	assert.Empty(t, FormatTable(nil, nil))
}

func TestPrintResult_TableFormat(t *testing.T) {
	cmd := &cobra.Command{Use: "stub", RunE: func(cmd *cobra.Command, args []string) error {
		return PrintResult(cmd, &LeaderboardOutput{})
	}}

	out, err := execCommand(t, cmd, &CLIContext{OutputFormat: "table"})
	require.NoError(t, err)
	assert.Contains(t, out, "RANK")
}

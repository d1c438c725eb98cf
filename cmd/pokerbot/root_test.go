package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Properties(t *testing.T) {
	assert.Equal(t, "pokerbot", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, expected := range []string{"start", "validate", "handlers", "version"} {
		assert.True(t, names[expected], "missing subcommand: %s", expected)
	}
}

func TestAllCommands_HaveUsage(t *testing.T) {
	for _, cmd := range rootCmd.Commands() {
		assert.NotEmpty(t, cmd.Use, "command %s should have usage", cmd.Name())
		assert.NotEmpty(t, cmd.Short, "command %s should have short description", cmd.Name())
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		versionJSON = false
	})

	require.NoError(t, rootCmd.Execute())

	var got VersionOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, Version, got.Version)
	assert.Equal(t, GitCommit, got.GitCommit)
}

func TestHandlersCommand_ListsInOrder(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listHandlers(&out))

	text := out.String()
	assert.Contains(t, text, "1. help")
	assert.Contains(t, text, "7. ask")
	assert.Contains(t, text, "!twitch")
	assert.Contains(t, text, "!streams <game> or .streams <game>")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("ratings")), bytes.Index(out.Bytes(), []byte("streams")))
}

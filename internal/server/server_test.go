package server

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/HendryAvila/storykeeper/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	return cfg
}

func TestNew_RegistersAllTools(t *testing.T) {
	app, cleanup, err := New(testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, []string{
		"set_character_knowledge_state",
		"check_character_can_reference",
		"get_character_knowledge_state",
		"validate_scene_against_knowledge",
		"get_character_knowledge_history",
		"create_series",
		"create_book",
		"create_chapter",
		"create_character",
		"get_characters",
		"get_series_outline",
	}, app.Tools)
	assert.NotNil(t, app.MCP)
	assert.NotNil(t, app.Engine)
	require.NoError(t, app.Store.Ping(context.Background()))
}

func TestNew_RejectsUnknownScanner(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scanner = "semantic"

	_, cleanup, err := New(cfg, nil)
	require.Error(t, err)
	cleanup()
}

func TestInstrument_LogsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	ok := instrument(logger, "ok_tool", func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("fine"), nil
	})
	rejected := instrument(logger, "bad_tool", func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("nope"), nil
	})
	broken := instrument(logger, "broken_tool", func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, errors.New("boom")
	})

	_, _ = ok(context.Background(), mcp.CallToolRequest{})
	_, _ = rejected(context.Background(), mcp.CallToolRequest{})
	_, err := broken(context.Background(), mcp.CallToolRequest{})
	require.Error(t, err)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "tool call", entries[0].Message)
	assert.Equal(t, "tool call rejected", entries[1].Message)
	assert.Equal(t, "tool call failed", entries[2].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "broken_tool", entries[2].ContextMap()["tool"])
}

package infra

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/putao520/aria-ng-gui/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand("activate\n")
	require.NoError(t, err)
	assert.Equal(t, domain.CommandActivate, cmd.Kind)

	cmd, err = ParseCommand("context-menu")
	require.NoError(t, err)
	assert.Equal(t, domain.CommandContextMenu, cmd.Kind)

	cmd, err = ParseCommand("progress 0.5")
	require.NoError(t, err)
	assert.Equal(t, domain.CommandProgress, cmd.Kind)
	require.NotNil(t, cmd.Value)
	assert.Equal(t, 0.5, *cmd.Value)

	cmd, err = ParseCommand("progress")
	require.NoError(t, err)
	assert.Nil(t, cmd.Value)
}

func TestParseCommand_Invalid(t *testing.T) {
	for _, line := range []string{"", "   ", "reboot", "progress half", "progress 1 2", "activate now"} {
		_, err := ParseCommand(line)
		assert.Error(t, err, "line %q", line)
	}
}

func TestFormatCommand_RoundTrips(t *testing.T) {
	for _, cmd := range []domain.Command{
		{Kind: domain.CommandActivate},
		{Kind: domain.CommandContextMenu},
		{Kind: domain.CommandProgress},
		{Kind: domain.CommandProgress, Value: floatPtr(0.25)},
	} {
		parsed, err := ParseCommand(FormatCommand(cmd))
		require.NoError(t, err)
		assert.Equal(t, cmd, parsed)
	}
}

func TestCommandServer_DeliversCommands(t *testing.T) {
	infoPath := filepath.Join(t.TempDir(), "instance.json")
	server, err := StartCommandServer(infoPath, zap.NewNop())
	require.NoError(t, err)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	commands := make(chan domain.Command, 4)
	go server.Serve(ctx, commands)

	require.NoError(t, SendCommand(infoPath, domain.Command{Kind: domain.CommandProgress, Value: floatPtr(0.75)}, time.Second))

	select {
	case cmd := <-commands:
		assert.Equal(t, domain.CommandProgress, cmd.Kind)
		require.NotNil(t, cmd.Value)
		assert.Equal(t, 0.75, *cmd.Value)
	case <-time.After(2 * time.Second):
		t.Fatal("command not delivered")
	}
}

func TestSendCommand_NoRunningInstance(t *testing.T) {
	infoPath := filepath.Join(t.TempDir(), "instance.json")

	err := SendCommand(infoPath, domain.Command{Kind: domain.CommandActivate}, 200*time.Millisecond)
	assert.Error(t, err)
}

func TestCommandServer_CloseRemovesInfo(t *testing.T) {
	infoPath := filepath.Join(t.TempDir(), "instance.json")
	server, err := StartCommandServer(infoPath, zap.NewNop())
	require.NoError(t, err)
	assert.FileExists(t, infoPath)

	require.NoError(t, server.Close())
	assert.NoFileExists(t, infoPath)
}

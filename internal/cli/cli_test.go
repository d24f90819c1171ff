package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testStringFlag = StringFlag{Name: "config", Shorthand: "c", DefValue: "pool.toml"}
	testBoolFlag   = BoolFlag{Name: "metrics", DefValue: false}
	testIntFlag    = IntFlag{Name: "verbosity", DefValue: 3}
	testUint64Flag = Uint64Flag{Name: "gas", DefValue: 30_000_000, Hidden: true}
)

func newTestCommand(t *testing.T) *cobra.Command {
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	require.NoError(t, RegisterFlags(cmd, []Flag{testStringFlag, testBoolFlag, testUint64Flag}))
	require.NoError(t, RegisterPFlags(cmd, []Flag{testIntFlag}))
	return cmd
}

func TestFlagDefaults(t *testing.T) {
	cmd := newTestCommand(t)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, "pool.toml", GetStringFlagValue(cmd, testStringFlag))
	assert.False(t, GetBoolFlagValue(cmd, testBoolFlag))
	assert.Equal(t, 3, GetIntFlagValue(cmd, testIntFlag))
	assert.Equal(t, uint64(30_000_000), GetUint64FlagValue(cmd, testUint64Flag))
	assert.False(t, HasFlagsChanged(cmd, []Flag{testStringFlag, testBoolFlag, testUint64Flag}))
}

func TestFlagParsing(t *testing.T) {
	cmd := newTestCommand(t)
	require.NoError(t, cmd.ParseFlags([]string{"-c", "other.toml", "--metrics", "--gas", "100", "--verbosity", "5"}))

	assert.Equal(t, "other.toml", GetStringFlagValue(cmd, testStringFlag))
	assert.True(t, GetBoolFlagValue(cmd, testBoolFlag))
	assert.Equal(t, 5, GetIntFlagValue(cmd, testIntFlag))
	assert.Equal(t, uint64(100), GetUint64FlagValue(cmd, testUint64Flag))
	assert.True(t, IsFlagChanged(cmd, testStringFlag))
	assert.True(t, HasFlagsChanged(cmd, []Flag{testUint64Flag}))
}

func TestParseErrorHandle(t *testing.T) {
	var handled error
	SetParseErrorHandle(func(err error) { handled = err })
	defer SetParseErrorHandle(nil)

	cmd := newTestCommand(t)
	assert.Equal(t, "", GetStringFlagValue(cmd, StringFlag{Name: "missing"}))
	assert.Error(t, handled)
}

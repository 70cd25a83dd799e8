package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCLI struct {
	Workers  int    `default:"1"`
	LogLevel string `default:"info"`

	Hide struct {
		PayloadFormat string `default:"png"`
		Verify        bool
	} `cmd:""`
	Even struct {
		Force bool
	} `cmd:""`
}

const testConfig = `
workers: 3
log_level: debug
hide:
  payload-format: bmp
  verify: true
`

func parse(t *testing.T, config string, args ...string) *testCLI {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(config), 0o600))

	var cli testCLI
	parser, err := kong.New(&cli, kong.Configuration(YAML, path))
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return &cli
}

func TestYAML(t *testing.T) {
	cli := parse(t, testConfig, "hide")
	assert.Equal(t, 3, cli.Workers)
	assert.Equal(t, "debug", cli.LogLevel)
	assert.Equal(t, "bmp", cli.Hide.PayloadFormat)
	assert.True(t, cli.Hide.Verify)
}

func TestYAML_CommandLineWins(t *testing.T) {
	cli := parse(t, testConfig, "--workers=5", "hide", "--payload-format=tiff")
	assert.Equal(t, 5, cli.Workers)
	assert.Equal(t, "tiff", cli.Hide.PayloadFormat)
}

func TestYAML_OtherCommand(t *testing.T) {
	cli := parse(t, testConfig, "even")
	assert.Equal(t, 3, cli.Workers)
	assert.False(t, cli.Even.Force)
	assert.Equal(t, "png", cli.Hide.PayloadFormat)
}

func TestYAML_Empty(t *testing.T) {
	cli := parse(t, "", "even")
	assert.Equal(t, 1, cli.Workers)
}

func TestYAML_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1"), 0o600))

	var cli testCLI
	_, err := kong.New(&cli, kong.Configuration(YAML, path))
	assert.Error(t, err)
}

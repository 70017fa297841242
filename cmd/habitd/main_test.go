package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/habitd/internal/storage"
)

func TestVersionCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	require.Equal(t, "habitd v"+Version+"\n", out.String())
}

func TestMigrateUpThenDown(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HABITD_STATE_DIR", filepath.Join(dir, "state"))

	for _, step := range []string{"up", "down", "up"} {
		cmd := newRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"migrate", step})
		require.NoError(t, cmd.Execute())
		require.True(t, strings.HasPrefix(out.String(), "migrate "+step+": "))
	}

	gw, err := storage.OpenSQLite(filepath.Join(dir, "state", "habitd.db"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
}

func TestFlagsOverrideConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HABITD_BACKEND", "file")

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--backend", "memory", "--log-level", "debug"}))
	flags := &rootFlags{backend: "memory", logLevel: "debug"}
	cfg, err := flags.load(cmd)
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.Backend)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, filepath.Join(".habitd", "habitd.log"), cfg.LogFile)
}

func TestInvalidBackendFlagFails(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--backend", "floppy"})
	require.Error(t, cmd.Execute())
}

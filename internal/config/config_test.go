package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TADA_DATA_DIR", "TADA_SCHEMA", "TADA_STORE", "TADA_DSN", "TADA_LOG_LEVEL",
		"TADA_LOG_FORMAT", "TADA_LOG_FILE", "TADA_THEME", "TADA_ROLE", "TADA_COLOR",
	} {
		t.Setenv(k, "")
	}
	// NO_COLOR is checked for presence, so it has to be really unset.
	if v, ok := os.LookupEnv("NO_COLOR"); ok {
		os.Unsetenv("NO_COLOR")
		t.Cleanup(func() { os.Setenv("NO_COLOR", v) })
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := load("", "", nil, nil)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(wd, DefaultDataDir), cfg.DataDir)
	require.Equal(t, filepath.Join(cfg.DataDir, "schema.hcl"), cfg.SchemaFile)
	require.Equal(t, filepath.Join(cfg.DataDir, "tada.log"), cfg.LogFile)
	require.Equal(t, filepath.Join(cfg.DataDir, "globalconfig.toml"), cfg.GlobalConfigPath())
	require.Equal(t, DefaultStore, cfg.Store)
	require.Equal(t, DefaultTheme, cfg.Theme)
}

func TestPriorityOrder(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	user := filepath.Join(dir, "user.toml")
	project := filepath.Join(dir, "project.toml")
	require.NoError(t, os.WriteFile(user, []byte("store = \"sqlite\"\ntheme = \"neon\"\nlog_level = \"debug\"\n"), 0o644))
	require.NoError(t, os.WriteFile(project, []byte("theme = \"mono\"\ndata_dir = \"/srv/tada\"\n"), 0o644))
	t.Setenv("TADA_LOG_LEVEL", "warn")
	t.Setenv("TADA_ROLE", "read")

	fs := flag.NewFlagSet("tada", flag.ContinueOnError)
	cfg, err := load(user, project, fs, []string{"--role", "edit", "ls"})
	require.NoError(t, err)

	require.Equal(t, "sqlite", cfg.Store, "user file")
	require.Equal(t, "mono", cfg.Theme, "project file beats user file")
	require.Equal(t, "/srv/tada", cfg.DataDir)
	require.Equal(t, "warn", cfg.LogLevel, "env beats files")
	require.Equal(t, "edit", cfg.Role, "flags beat env")
	require.Equal(t, []string{"ls"}, fs.Args())
}

func TestMissingFilesAreSkipped(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	_, err := load(filepath.Join(dir, "nope.toml"), filepath.Join(dir, "nope2.toml"), nil, nil)
	require.NoError(t, err)
}

func TestInvalidValues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("colour = \"red\"\n"), 0o644))
	_, err := load(unknown, "", nil, nil)
	require.ErrorContains(t, err, "unknown keys")

	t.Setenv("TADA_STORE", "cassandra")
	_, err = load("", "", nil, nil)
	require.ErrorContains(t, err, "store")
}

func TestNoColorEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("NO_COLOR", "1")
	cfg, err := load("", "", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "never", cfg.Color)
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/ada")
	t.Setenv("TADA_TEST_DIR", "/tmp/x")
	require.Equal(t, "/home/ada/data", expandPath("~/data"))
	require.Equal(t, "/home/ada", expandPath("~"))
	require.Equal(t, "/tmp/x/y", expandPath("$TADA_TEST_DIR/y"))
	require.Equal(t, "", expandPath(""))
}

package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Interval int    `json:"interval"`
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "jecna.local.json5", LocalPath("jecna.json5"))
	require.Equal(t, filepath.Join("a", "b.local.json5"), LocalPath(filepath.Join("a", "b.json5")))
	require.Equal(t, "config.local", LocalPath("config"))
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jecna.json5")

	_, err := ReadConfig[testConfig](path)
	require.True(t, os.IsNotExist(err))

	err = os.WriteFile(path, []byte(`{
		// defaults
		username: "novak",
		password: "",
		interval: 30,
	}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{Username: "novak", Interval: 30}, cfg)

	err = os.WriteFile(LocalPath(path), []byte(`{password: "tajne"}`), 0600)
	require.NoError(t, err)

	cfg, err = ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, testConfig{Username: "novak", Password: "tajne", Interval: 30}, cfg)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0777))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "recursive_test.json5"),
		[]byte(`{username: "found"}`),
		0600,
	))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	defer os.Chdir(wd)

	cfg, err := ReadRecursively[testConfig]("recursive_test.json5")
	require.NoError(t, err)
	require.Equal(t, "found", cfg.Username)
}

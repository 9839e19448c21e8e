// Package testutil provides shared test helpers for creating config files and catalog fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/reviewdeck/internal/catalog"
)

// SetupTestConfig creates a config file using the yaml store, a catalog directory and an SQLite path
// under tmpDir. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	dirs := []string{"items", "reviews"}
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`learner_id: alice
timezone: UTC
store:
  driver: yaml
  directory: %s
catalog:
  directories:
    - %s
sqlite:
  path: %s
`,
		filepath.Join(tmpDir, "reviews"),
		filepath.Join(tmpDir, "items"),
		filepath.Join(tmpDir, "reviewdeck.db"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithRemote creates the config of SetupTestConfig with a remote store at baseURL.
func SetupTestConfigWithRemote(t *testing.T, tmpDir, baseURL string) string {
	t.Helper()
	cfgPath := SetupTestConfig(t, tmpDir)

	content, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	content = append(content, []byte(fmt.Sprintf("remote:\n  base_url: %s\n  api_key: fake-key-for-testing\n  retry_attempts: 0\n", baseURL))...)
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))
	return cfgPath
}

// CreateCatalogFile writes entries as <itemsDir>/<name>.yml.
func CreateCatalogFile(t *testing.T, itemsDir, name string, entries ...catalog.Entry) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(itemsDir, 0755))
	content, err := yaml.Marshal(entries)
	require.NoError(t, err)

	path := filepath.Join(itemsDir, name+".yml")
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

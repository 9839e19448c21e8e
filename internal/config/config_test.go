package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		LearnerID: "default",
		Store: StoreConfig{
			Driver:    DriverYAML,
			Directory: "reviews",
		},
		Session: SessionConfig{
			MaxDue:    50,
			NewTarget: 10,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			Database: "reviewdeck",
			Username: "user",
		},
		SQLite: SQLiteConfig{
			Path: "reviewdeck.db",
		},
		Remote: RemoteConfig{
			TimeoutSeconds: 10,
			RetryAttempts:  3,
		},
	}
}

func TestConfigLoader_Load(t *testing.T) {
	catalogDir := t.TempDir()

	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name: "no config file uses defaults",
			want: defaultConfig,
		},
		{
			name: "custom values",
			configContent: `learner_id: alice
timezone: Asia/Tokyo
store:
  driver: sqlite
  mirror: yaml
  directory: data
catalog:
  directories:
    - ` + catalogDir + `
session:
  max_due: 20
  new_target: 5
sqlite:
  path: alice.db
`,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.LearnerID = "alice"
				cfg.Timezone = "Asia/Tokyo"
				cfg.Store = StoreConfig{Driver: DriverSQLite, Mirror: DriverYAML, Directory: "data"}
				cfg.Catalog.Directories = []string{catalogDir}
				cfg.Session = SessionConfig{MaxDue: 20, NewTarget: 5}
				cfg.SQLite.Path = "alice.db"
				return cfg
			},
		},
		{
			name:            "explicit path and environment overrides",
			useExplicitPath: true,
			configContent: `store:
  driver: remote
remote:
  base_url: https://sync.example.com/api
`,
			env: map[string]string{
				"REVIEWDECK_LEARNER_ID":     "bob",
				"REVIEWDECK_REMOTE_API_KEY": "secret-key",
				"DB_PASSWORD":               "db-secret",
			},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.LearnerID = "bob"
				cfg.Store.Driver = DriverRemote
				cfg.Remote.BaseURL = "https://sync.example.com/api"
				cfg.Remote.APIKey = "secret-key"
				cfg.Database.Password = "db-secret"
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `store:
  driver: yaml
  invalid yaml format here [[[
`,
			wantErrorContains: []string{
				"configuration file found but could not be read",
			},
		},
		{
			name: "unknown driver",
			configContent: `store:
  driver: postgres
`,
			wantErrorContains: []string{"invalid configuration", "driver must be one of"},
		},
		{
			name: "remote store without base url",
			configContent: `store:
  driver: yaml
  mirror: remote
`,
			wantErrorContains: []string{"remote.base_url is required when the remote store is used"},
		},
		{
			name: "mirror equal to driver",
			configContent: `store:
  driver: sqlite
  mirror: sqlite
`,
			wantErrorContains: []string{"store.mirror must differ from store.driver"},
		},
		{
			name:              "unknown time zone",
			configContent:     "timezone: Mars/Olympus\n",
			wantErrorContains: []string{"timezone must be an IANA time zone name"},
		},
		{
			name: "missing catalog directory",
			configContent: `catalog:
  directories:
    - /nonexistent/catalog
`,
			wantErrorContains: []string{"catalog.directories[0] must be an existing and readable directory"},
		},
		{
			name: "session without capacity",
			configContent: `session:
  max_due: 0
`,
			wantErrorContains: []string{"max_due must be 1 or greater"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"REVIEWDECK_LEARNER_ID", "REVIEWDECK_REMOTE_API_KEY", "DB_PASSWORD"} {
				t.Setenv(key, tt.env[key])
			}

			tempDir := t.TempDir()
			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "reviewdeck.yml")
				require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0644))
			} else {
				if tt.configContent != "" {
					require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yml"), []byte(tt.configContent), 0644))
				}
				t.Chdir(tempDir)
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)
			got, err := loader.Load()

			if len(tt.wantErrorContains) > 0 {
				require.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestConfig_Location(t *testing.T) {
	loc, err := Config{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = Config{Timezone: "Asia/Tokyo"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())

	_, err = Config{Timezone: "Nowhere/City"}.Location()
	assert.Error(t, err)
}

func TestConfig_UsesDriver(t *testing.T) {
	cfg := Config{Store: StoreConfig{Driver: DriverYAML, Mirror: DriverRemote}}
	assert.True(t, cfg.UsesDriver(DriverYAML))
	assert.True(t, cfg.UsesDriver(DriverRemote))
	assert.False(t, cfg.UsesDriver(DriverMySQL))
}

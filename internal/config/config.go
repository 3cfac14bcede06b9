package config

import (
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Storage *storageConfig
	Service *svcConfig
}

type storageConfig struct {
	DataDir       string        `envconfig:"RACK_PLANNER_DATA_DIR" default:"./data"`
	TestMode      bool          `envconfig:"RACK_PLANNER_TEST_MODE" default:"false"`
	WorkerID      string        `envconfig:"RACK_PLANNER_WORKER_ID" default:"1"`
	WatchDebounce time.Duration `envconfig:"RACK_PLANNER_WATCH_DEBOUNCE" default:"100ms"`
}

type svcConfig struct {
	Address        string   `envconfig:"RACK_PLANNER_ADDRESS" default:":3000"`
	MetricsAddress string   `envconfig:"RACK_PLANNER_METRICS_ADDRESS" default:":8080"`
	LogLevel       string   `envconfig:"RACK_PLANNER_LOG_LEVEL" default:"info"`
	CorsOrigins    []string `envconfig:"RACK_PLANNER_CORS_ORIGINS" default:"http://localhost:5173"`
}

// CollectionDir returns the directory holding the collection files.
// In test mode every worker gets its own directory so parallel runs never share files.
func (s *storageConfig) CollectionDir() string {
	if s.TestMode {
		return filepath.Join(s.DataDir, "worker-"+s.WorkerID)
	}
	return s.DataDir
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a configuration built only from the defaults, ignoring the environment.
func NewDefault() *Config {
	return &Config{
		Storage: &storageConfig{
			DataDir:       "./data",
			WorkerID:      "1",
			WatchDebounce: 100 * time.Millisecond,
		},
		Service: &svcConfig{
			Address:        ":3000",
			MetricsAddress: ":8080",
			LogLevel:       "info",
			CorsOrigins:    []string{"http://localhost:5173"},
		},
	}
}

// NewForTest returns an isolated test-mode configuration rooted at dataDir.
func NewForTest(dataDir, workerID string) *Config {
	cfg := NewDefault()
	cfg.Storage.DataDir = dataDir
	cfg.Storage.TestMode = true
	cfg.Storage.WorkerID = workerID
	return cfg
}

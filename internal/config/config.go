package config

import (
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/suimeet/eventgraph/common"
	"github.com/suimeet/eventgraph/internal/postgres"
	"github.com/suimeet/eventgraph/pkg/logger"
	"github.com/suimeet/eventgraph/pkg/middleware/requestcontext"
	"github.com/suimeet/eventgraph/pkg/middleware/requestlogger"
)

var (
	configOnce sync.Once
	config     = &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		Network: common.NetworkMainnet,
	}
)

type Config struct {
	Logger        logger.Config  `mapstructure:"logger"`
	Network       common.Network `mapstructure:"network"`
	EnableModules []string       `mapstructure:"enable_modules"`
	GraphNode     GraphNode      `mapstructure:"graph_node"`
	HTTPServer    HTTPServer     `mapstructure:"http_server"`
	Modules       Modules        `mapstructure:"modules"`
}

// GraphNode is the JSON-RPC endpoint of the object-store node.
type GraphNode struct {
	URL string `mapstructure:"url"`
}

type HTTPServer struct {
	Port      int                               `mapstructure:"port"`
	Logger    requestlogger.Config              `mapstructure:"logger"`
	RequestIP requestcontext.WithClientIPConfig `mapstructure:"request_ip"`
}

type Modules struct {
	Events EventsModule `mapstructure:"events"`
}

type EventsModule struct {
	Database string          `mapstructure:"database"`
	Postgres postgres.Config `mapstructure:"postgres"`

	// Package is the on-chain package id whose log entries feed ingestion.
	Package string `mapstructure:"package"`

	// AccountRegistry is the root anchor for account identity derivation.
	AccountRegistry string `mapstructure:"account_registry"`

	PollInterval time.Duration `mapstructure:"poll_interval"`
	Lookback     time.Duration `mapstructure:"lookback"`
	FeedCapacity int           `mapstructure:"feed_capacity"`

	APIHandlers []string `mapstructure:"api_handlers"`
}

// BindPFlag binds a command-line flag to a configuration key.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Failed to bind flag to configuration", "key", key, "error", err)
	}
}

// Parse loads the configuration from the given file (or ./config.yaml) and
// environment variables.
func Parse(configFile string) Config {
	configOnce.Do(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			viper.AddConfigPath("./")
			viper.SetConfigName("config")
		}

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.Warn("config file not found, use default value", "error", err)
			} else {
				logger.Panic("invalid config file", "error", err)
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			logger.Panic("failed to unmarshal config", "error", err)
		}
	})

	return *config
}

// Load returns the already-parsed configuration.
func Load() Config {
	return Parse("")
}

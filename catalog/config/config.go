package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/library-sync/pkg/bridge"
	"github.com/Astemirdum/library-sync/pkg/database"
	"github.com/Astemirdum/library-sync/pkg/kafka"
	"github.com/Astemirdum/library-sync/pkg/logger"
	"github.com/Astemirdum/library-sync/pkg/server"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

type DirectoryHTTPServer struct {
	Host string `envconfig:"DIRECTORY_HTTP_HOST" default:"frontend_api"`
	Port string `envconfig:"DIRECTORY_HTTP_PORT" default:"8000"`
}

type Config struct {
	Server              server.Config `yaml:"server"`
	Database            database.DB   `yaml:"db"`
	DirectoryHTTPServer DirectoryHTTPServer
	Sync                bridge.Config `yaml:"sync"`
	Kafka               kafka.Config  `yaml:"kafka"`
	Log                 logger.Log    `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment on top of the catalog defaults.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		config := Default()
		for _, op := range ops {
			op(config)
		}
		if err := envconfig.Process("", config); err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

// Default is backend_api on :8001 with a local sqlite file.
func Default() *Config {
	return &Config{
		Server: server.Config{
			Host:         "0.0.0.0",
			Port:         "8001",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: database.DB{
			Driver: database.DriverSQLite,
			Path:   "backend.db",
		},
		DirectoryHTTPServer: DirectoryHTTPServer{Host: "frontend_api", Port: "8000"},
		Sync:                bridge.Config{Timeout: 5 * time.Second},
		Log:                 logger.Log{LogLevel: zapcore.InfoLevel},
	}
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}

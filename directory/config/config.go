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

type CatalogHTTPServer struct {
	Host string `envconfig:"CATALOG_HTTP_HOST" default:"backend_api"`
	Port string `envconfig:"CATALOG_HTTP_PORT" default:"8001"`
}

type Config struct {
	Server            server.Config `yaml:"server"`
	Database          database.DB   `yaml:"db"`
	CatalogHTTPServer CatalogHTTPServer
	Sync              bridge.Config `yaml:"sync"`
	Kafka             kafka.Config  `yaml:"kafka"`
	Log               logger.Log    `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

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

// Default is frontend_api on :8000 backed by postgres.
func Default() *Config {
	return &Config{
		Server: server.Config{
			Host:         "0.0.0.0",
			Port:         "8000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: database.DB{
			Driver:   database.DriverPostgres,
			Host:     "localhost",
			Port:     "5432",
			Username: "postgres",
			NameDB:   "directory",
			SSLMode:  "disable",
		},
		CatalogHTTPServer: CatalogHTTPServer{Host: "backend_api", Port: "8001"},
		Sync:              bridge.Config{Timeout: 5 * time.Second},
		Log:               logger.Log{LogLevel: zapcore.InfoLevel},
	}
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}

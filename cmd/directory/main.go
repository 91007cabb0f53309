package main

import (
	stdLog "log"

	"github.com/Astemirdum/library-sync/directory/app"
	"github.com/Astemirdum/library-sync/directory/config"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("no .env file, using environment only")
	}
	cfg := config.NewConfig(config.WithLogLevel(zapcore.DebugLevel))

	if err := app.Run(cfg); err != nil {
		stdLog.Fatal("run ", err)
	}
}

package main

import (
	"context"
	"os"

	"github.com/Chative-core-poc-v1/intake/internal/cli"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	logx.Init()

	// Load structured config from .env and the environment
	cfg, err := cli.LoadConfig(".env")
	if err != nil {
		logx.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logx.Init(logx.LoggerOpts{
		Environment: cfg.Env(),
		Level:       cfg.LogLevel,
	})

	if err := cli.RootCommand(cfg).ExecuteContext(context.Background()); err != nil {
		logx.Error().Err(err).Msg("Command failed")
		return 1
	}
	return 0
}

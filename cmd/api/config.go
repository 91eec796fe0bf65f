package main

import (
	"log/slog"
	"time"

	"github.com/thirdeyegames/coinflip/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" envDefault:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"15s"`

	Postgres config.PostgresConfig
	Auth     config.AuthConfig
	Mail     config.MailConfig
}

package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN,required,notEmpty"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`
}

type AuthConfig struct {
	AccessSecret  string        `env:"ACCESS_TOKEN_SECRET,required,notEmpty"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET,required,notEmpty"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`
}

// MailConfig configures the verification-code sender. With an empty
// SMTPAddr the app falls back to logging codes instead of sending them.
type MailConfig struct {
	SMTPAddr     string `env:"SMTP_ADDR"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	From         string `env:"MAIL_FROM" envDefault:"no-reply@thirdeye.games"`
}

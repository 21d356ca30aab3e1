package db

import (
	"time"

	"github.com/smallbiznis/snackbar/internal/config"
)

type Config struct {
	Type            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime time.Duration
}

// FromAppConfig maps the environment configuration onto connection settings.
func FromAppConfig(cfg config.Config) Config {
	return Config{
		Type:            cfg.StoreBackend,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		Name:            cfg.DBName,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		SSLMode:         cfg.DBSSLMode,
		SQLitePath:      cfg.SQLitePath,
		MaxIdleConn:     2,
		MaxOpenConn:     4,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

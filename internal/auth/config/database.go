package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// PostgresConfig содержит настройки подключения к базе пользователей и сессий.
type PostgresConfig struct {
	Host     string `yaml:"host" env:"AUTH_POSTGRES_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"AUTH_POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"AUTH_POSTGRES_USER" env-default:"sessiongate"`
	Password string `yaml:"password" env:"AUTH_POSTGRES_PASSWORD" env-default:"sessiongate"`
	Database string `yaml:"database" env:"AUTH_POSTGRES_DB" env-default:"sessiongate"`
	SSLMode  string `yaml:"ssl_mode" env:"AUTH_POSTGRES_SSL_MODE" env-default:"disable"`
	MinConn  int    `yaml:"min_conn" env:"AUTH_POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn  int    `yaml:"max_conn" env:"AUTH_POSTGRES_MAX_CONN" env-default:"10"`
}

// GetDSN возвращает строку подключения для пула pgx.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// GetConnectionURL возвращает URL подключения для golang-migrate.
// Учетные данные экранируются, чтобы пароль со спецсимволами не ломал URL.
func (p *PostgresConfig) GetConnectionURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:     "/" + p.Database,
		RawQuery: url.Values{"sslmode": []string{p.SSLMode}}.Encode(),
	}
	return u.String()
}

package config

import "fmt"

// Виды хранилищ.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// StorageConfig выбирает хранилища пользователей и сессий.
type StorageConfig struct {
	Users    string `yaml:"users" env:"AUTH_STORAGE_USERS" env-default:"postgres"`
	Sessions string `yaml:"sessions" env:"AUTH_STORAGE_SESSIONS" env-default:"postgres"`
}

func (s *StorageConfig) validate() []error {
	var errs []error
	switch s.Users {
	case StorePostgres, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("AUTH_STORAGE_USERS must be %q or %q, got %q", StorePostgres, StoreMemory, s.Users))
	}
	switch s.Sessions {
	case StorePostgres, StoreRedis, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("AUTH_STORAGE_SESSIONS must be %q, %q or %q, got %q",
			StorePostgres, StoreRedis, StoreMemory, s.Sessions))
	}
	// Внешний ключ sessions.user_id ссылается на users в Postgres, поэтому сессии
	// в Postgres требуют пользователей там же.
	if s.Sessions == StorePostgres && s.Users != StorePostgres {
		errs = append(errs, fmt.Errorf("AUTH_STORAGE_SESSIONS=%q requires AUTH_STORAGE_USERS=%q, got %q",
			StorePostgres, StorePostgres, s.Users))
	}
	return errs
}

// Package config предоставляет функциональность для загрузки конфигурации из файла и переменных окружения.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"sessiongate/pkg/logger"
)

const (
	msgLoadingConfiguration    = "loading configuration"
	msgConfigurationLoaded     = "configuration loaded successfully"
	msgFailedLoadConfiguration = "failed to load configuration"
	msgConfigFileMissing       = "configuration file not found, using environment only"

	errFailedLoadConfiguration = "failed to load configuration"

	attrService = "service"
	attrPath    = "path"
)

// Load заполняет T из файла path (yaml, json, toml или .env) и переменных окружения.
// Переменные окружения имеют приоритет над файлом. Пустой или отсутствующий path
// означает чтение только из окружения.
func Load[T any](ctx context.Context, serviceName, path string) (*T, error) {
	log := logger.Log(ctx).With(zap.String(attrService, serviceName))

	log.Info(ctx, msgLoadingConfiguration, zap.String(attrPath, path))

	var cfg T
	var err error

	switch {
	case path == "":
		err = cleanenv.ReadEnv(&cfg)
	case fileExists(path):
		err = cleanenv.ReadConfig(path, &cfg)
	default:
		log.Warn(ctx, msgConfigFileMissing, zap.String(attrPath, path))
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		log.Error(ctx, msgFailedLoadConfiguration, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errFailedLoadConfiguration, err)
	}

	log.Info(ctx, msgConfigurationLoaded)

	return &cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

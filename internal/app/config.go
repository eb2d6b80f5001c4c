package app

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/go-tracker/internal/config"
)

// MustReadConfig reads the yaml file at path overlaid with the
// environment, or the environment alone when path is empty.
func MustReadConfig(path string) {
	var reader config.Reader = config.NewEnvReader()
	if path != "" {
		reader = config.NewFileReader(path)
	}

	cfg, err := reader.Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("path", path).
			Msg("failed to read config")
		panic(err)
	}
	globalLogger.Info().
		Str("env", cfg.Env).
		Str("storage_driver", cfg.StorageDriver).
		Msg("read config")

	config.SetGlobal(cfg)
}

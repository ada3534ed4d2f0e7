// Package config loads soundmark's configuration: a YAML file for
// structural settings plus a .env file (via github.com/joho/godotenv) for
// secrets and connection strings.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"soundmark/utils"
)

// Database selects which persistence backend the soundmark command opens.
type Database struct {
	Driver string `yaml:"driver"` // "sqlite" (or empty), "postgres", or "gorm-postgres"
	DSN    string `yaml:"dsn"`
	Path   string `yaml:"path"` // sqlite file path, used when Driver == "sqlite"
}

// Config is soundmark's full configuration surface.
type Config struct {
	Database Database `yaml:"database"`

	SampleRate int `yaml:"sample_rate"`

	Microphone struct {
		DeviceName string `yaml:"device_name"`
	} `yaml:"microphone"`

	Ingest struct {
		DownloadDir string `yaml:"download_dir"`
	} `yaml:"ingest"`
}

// Default returns the zero-setup configuration: a local SQLite file, no
// external services required.
func Default() Config {
	return Config{
		Database: Database{
			Driver: "sqlite",
			Path:   "soundmark.db",
		},
		SampleRate: 11000,
		Ingest: struct {
			DownloadDir string `yaml:"download_dir"`
		}{DownloadDir: "downloads"},
	}
}

// Load reads environment variables from envPath (if it exists) via
// godotenv, then merges a YAML config file at yamlPath over the
// defaults. Either path may be empty to skip that source.
func Load(yamlPath, envPath string) (Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: loading .env: %w", err)
		}
	}

	cfg := Default()
	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		switch {
		case os.IsNotExist(err):
			// no YAML file is fine; defaults stand.
		case err != nil:
			return Config{}, fmt.Errorf("config: reading %s: %w", yamlPath, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parsing %s: %w", yamlPath, err)
			}
		}
	}

	if driver := utils.GetEnv("SOUNDMARK_DB_DRIVER", ""); driver != "" {
		cfg.Database.Driver = driver
	}
	if dsn := utils.GetEnv("SOUNDMARK_DB_DSN", ""); dsn != "" {
		cfg.Database.DSN = dsn
	}

	return cfg, nil
}

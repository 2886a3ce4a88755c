/*
Package config loads sharedl settings from the environment and an optional .env file.
*/
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "SHAREDL"

type Config struct {
	Log      LogConfig
	Download DownloadConfig
	API      APIConfig
}

type LogConfig struct {
	Level string
}

type DownloadConfig struct {
	Dir              string
	PipeBufferSize   int
	ProgressInterval time.Duration
}

type APIConfig struct {
	// URL overrides the API base derived from the share link when set.
	URL     string
	Timeout time.Duration
}

// Load reads the configuration. A missing .env file is not an error.
func Load() *Config {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) *Config {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DOWNLOAD_DIR", ".")
	v.SetDefault("PIPE_BUFFER_SIZE", 256*1024)
	v.SetDefault("PROGRESS_INTERVAL_MS", 100)
	v.SetDefault("API_URL", "")
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 0)

	v.AutomaticEnv()

	bufferSize := v.GetInt("PIPE_BUFFER_SIZE")
	if bufferSize <= 0 {
		bufferSize = 256 * 1024
	}

	return &Config{
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Download: DownloadConfig{
			Dir:              v.GetString("DOWNLOAD_DIR"),
			PipeBufferSize:   bufferSize,
			ProgressInterval: time.Duration(v.GetInt("PROGRESS_INTERVAL_MS")) * time.Millisecond,
		},
		API: APIConfig{
			URL:     v.GetString("API_URL"),
			Timeout: time.Duration(v.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second,
		},
	}
}

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestConfig_load_Defaults(t *testing.T) {
	cfg := load(viper.New())

	if cfg.Log.Level != "info" {
		t.Errorf(`unexpected level: "%s"`, cfg.Log.Level)
	}
	if cfg.Download.Dir != "." {
		t.Errorf(`unexpected dir: "%s"`, cfg.Download.Dir)
	}
	if cfg.Download.PipeBufferSize != 256*1024 {
		t.Errorf(`unexpected buffer size: %d`, cfg.Download.PipeBufferSize)
	}
	if cfg.Download.ProgressInterval != 100*time.Millisecond {
		t.Errorf(`unexpected interval: %s`, cfg.Download.ProgressInterval)
	}
	if cfg.API.Timeout != 0 {
		t.Errorf(`unexpected timeout: %s`, cfg.API.Timeout)
	}
}

func TestConfig_load_Env(t *testing.T) {
	t.Setenv("SHAREDL_LOG_LEVEL", "debug")
	t.Setenv("SHAREDL_DOWNLOAD_DIR", "/tmp/out")
	t.Setenv("SHAREDL_PIPE_BUFFER_SIZE", "-5")
	t.Setenv("SHAREDL_PROGRESS_INTERVAL_MS", "250")
	t.Setenv("SHAREDL_API_URL", "http://127.0.0.1:8080")

	cfg := load(viper.New())

	if cfg.Log.Level != "debug" {
		t.Errorf(`unexpected level: "%s"`, cfg.Log.Level)
	}
	if cfg.Download.Dir != "/tmp/out" {
		t.Errorf(`unexpected dir: "%s"`, cfg.Download.Dir)
	}
	if cfg.Download.PipeBufferSize != 256*1024 {
		t.Errorf(`non-positive buffer size should fall back: %d`, cfg.Download.PipeBufferSize)
	}
	if cfg.Download.ProgressInterval != 250*time.Millisecond {
		t.Errorf(`unexpected interval: %s`, cfg.Download.ProgressInterval)
	}
	if cfg.API.URL != "http://127.0.0.1:8080" {
		t.Errorf(`unexpected api url: "%s"`, cfg.API.URL)
	}
}

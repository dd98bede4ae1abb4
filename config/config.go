package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the tuning knobs of the data-access core. It is read once at
// startup by the composition root and passed down as a value.
type Config struct {
	// ReadBatchSize is how many rows a single decode call pulls from a row
	// group cursor at a time.
	ReadBatchSize int `mapstructure:"read_batch_size"`

	// DecodeParallelism bounds how many row groups a range read decodes
	// concurrently.
	DecodeParallelism int `mapstructure:"decode_parallelism"`

	// ScanBatchRows is the batch size used by incremental full-file scans.
	ScanBatchRows int64 `mapstructure:"scan_batch_rows"`
}

// Load reads configuration from the environment with PARQVIEW_ prefixed
// variables, falling back to defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetDefault("read_batch_size", 1024)
	v.SetDefault("decode_parallelism", runtime.GOMAXPROCS(0))
	v.SetDefault("scan_batch_rows", 4096)

	v.SetEnvPrefix("PARQVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"read_batch_size", "decode_parallelism", "scan_batch_rows"} {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	cfg := Config{
		ReadBatchSize:     v.GetInt("read_batch_size"),
		DecodeParallelism: v.GetInt("decode_parallelism"),
		ScanBatchRows:     v.GetInt64("scan_batch_rows"),
	}
	if cfg.ReadBatchSize < 1 {
		cfg.ReadBatchSize = 1024
	}
	if cfg.DecodeParallelism < 1 {
		cfg.DecodeParallelism = 1
	}
	if cfg.ScanBatchRows < 1 {
		cfg.ScanBatchRows = 4096
	}
	return cfg, nil
}

// Default returns the built-in defaults without consulting the environment.
func Default() Config {
	return Config{
		ReadBatchSize:     1024,
		DecodeParallelism: runtime.GOMAXPROCS(0),
		ScanBatchRows:     4096,
	}
}

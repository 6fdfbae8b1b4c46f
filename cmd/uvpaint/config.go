package main

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig holds the defaults of the command line flags,
// which can be overridden through UVPAINT_* environment variables.
type envConfig struct {
	Width         int           `env:"UVPAINT_WIDTH"           envDefault:"1024"`
	Height        int           `env:"UVPAINT_HEIGHT"          envDefault:"1024"`
	HalfExtent    float64       `env:"UVPAINT_HALF_EXTENT"     envDefault:"0.5"`
	PixelsPerUnit float64       `env:"UVPAINT_PIXELS_PER_UNIT" envDefault:"640"`
	Base          string        `env:"UVPAINT_BASE"`
	Mesh          string        `env:"UVPAINT_MESH"`
	Script        string        `env:"UVPAINT_SCRIPT"`
	Out           string        `env:"UVPAINT_OUT"`
	Prefs         string        `env:"UVPAINT_PREFS"`
	Format        string        `env:"UVPAINT_FORMAT"          envDefault:"png"`
	Blend         string        `env:"UVPAINT_BLEND"`
	Op            string        `env:"UVPAINT_OP"              envDefault:"src_over"`
	Color         string        `env:"UVPAINT_COLOR"           envDefault:"#000000"`
	Tick          time.Duration `env:"UVPAINT_TICK"            envDefault:"0s"`
	LoadOnStart   bool          `env:"UVPAINT_LOAD"            envDefault:"true"`
	Workers       int           `env:"UVPAINT_WORKERS"`
	Verbose       bool          `env:"UVPAINT_VERBOSE"`
}

func loadEnvConfig() (envConfig, error) {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return envConfig{}, err
	}
	return cfg, nil
}

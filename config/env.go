package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment override name.
const EnvPrefix = "DTC"

// environment lists values which could be overridden from environment,
// unset variables leave configuration alone.
type environment struct {
	ViewportsMin *int     `envconfig:"VIEWPORTS_MIN"`
	ViewportsMid *int     `envconfig:"VIEWPORTS_MID"`
	ViewportsMax *int     `envconfig:"VIEWPORTS_MAX"`
	RootFontSize *float64 `envconfig:"ROOT_FONT_SIZE"`
}

func (cfg *Config) applyEnvironment() error {
	var env environment
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to process environment overrides: %w", err)
	}
	if env.ViewportsMin != nil {
		cfg.Tokens.Viewports.Min = *env.ViewportsMin
	}
	if env.ViewportsMid != nil {
		cfg.Tokens.Viewports.Mid = *env.ViewportsMid
	}
	if env.ViewportsMax != nil {
		cfg.Tokens.Viewports.Max = *env.ViewportsMax
	}
	if env.RootFontSize != nil {
		cfg.Fluid.RootFontSize = *env.RootFontSize
	}
	return nil
}

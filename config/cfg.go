package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"dtc/misc"
	"dtc/pipeline"
	"dtc/synth"
	"dtc/token"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	ViewportsConfig struct {
		Min  int    `yaml:"min" validate:"gt=0"`
		Mid  int    `yaml:"mid" validate:"gtfield=Min"`
		Max  int    `yaml:"max" validate:"gtfield=Mid"`
		File string `yaml:"file,omitempty"`
	}

	CategoryConfig struct {
		Name      string `yaml:"name" validate:"required"`
		Files     string `yaml:"files" validate:"required"`
		Fluid     bool   `yaml:"fluid,omitempty"`
		Transform string `yaml:"transform,omitempty" validate:"omitempty,oneof=identity slug font-family font-weight"`
	}

	TokensConfig struct {
		Viewports  ViewportsConfig  `yaml:"viewports"`
		Categories []CategoryConfig `yaml:"categories" validate:"required,min=1,dive"`
	}

	FluidConfig struct {
		RootFontSize float64 `yaml:"root_font_size" validate:"gt=0"`
		Precision    int     `yaml:"precision" validate:"min=0,max=10"`
		DefaultUnit  string  `yaml:"default_unit" validate:"oneof=px rem em"`
	}

	OutputConfig struct {
		ThemeFile      string `yaml:"theme_file" validate:"required"`
		ThemeFormat    string `yaml:"theme_format" validate:"oneof=json yaml"`
		StylesheetFile string `yaml:"stylesheet_file" validate:"required"`
		Banner         string `yaml:"banner"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Tokens    TokensConfig   `yaml:"tokens"`
		Fluid     FluidConfig    `yaml:"fluid"`
		Synthesis synth.Tables   `yaml:"synthesis"`
		Output    OutputConfig   `yaml:"output"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// NOTE: must match yaml field name above, banner is expanded at synthesis
// time and not when configuration is loaded.
const BannerFieldName = "banner"

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(BannerFieldName),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := cfg.process(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// process applies environment overrides, then sanitizes and validates
// resulting configuration.
func (cfg *Config) process() error {
	if err := cfg.applyEnvironment(); err != nil {
		return err
	}
	if err := gencfg.Sanitize(cfg); err != nil {
		return fmt.Errorf("failed to sanitize configuration: %w", err)
	}
	if err := gencfg.Validate(cfg); err != nil {
		return fmt.Errorf("failed to validate configuration: %w", err)
	}
	if err := cfg.Synthesis.Validate(); err != nil {
		return fmt.Errorf("bad synthesis tables: %w", err)
	}
	return nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration tamplate to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}

// Viewports returns configured breakpoints.
func (cfg *Config) Viewports() token.Viewports {
	return token.Viewports{Min: cfg.Tokens.Viewports.Min, Mid: cfg.Tokens.Viewports.Mid, Max: cfg.Tokens.Viewports.Max}
}

// PipelineOptions converts configuration into options for a single run.
func (cfg *Config) PipelineOptions() pipeline.Options {
	cats := make([]pipeline.Category, 0, len(cfg.Tokens.Categories))
	for _, c := range cfg.Tokens.Categories {
		cats = append(cats, pipeline.Category{Name: c.Name, Files: c.Files, Fluid: c.Fluid, Transform: c.Transform})
	}
	return pipeline.Options{
		Viewports:     cfg.Viewports(),
		ViewportsFile: cfg.Tokens.Viewports.File,
		Categories:    cats,
		RootFontSize:  cfg.Fluid.RootFontSize,
		Precision:     cfg.Fluid.Precision,
		DefaultUnit:   cfg.Fluid.DefaultUnit,
		Tables:        cfg.Synthesis,
		Banner:        cfg.Output.Banner,
		App:           misc.GetAppName(),
		Version:       misc.GetVersion(),
	}
}

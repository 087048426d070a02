// Package config loads the YAML configuration of the pipeline graph and of its two filter chains,
// and applies it to graphs and nodes.
package config

import (
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/askiada/go-image-pipeline/internal/logger"
	"github.com/askiada/go-image-pipeline/pkg/binaryshape"
	"github.com/askiada/go-image-pipeline/pkg/gradient"
	"github.com/askiada/go-image-pipeline/pkg/image"
	"github.com/askiada/go-image-pipeline/pkg/labelmap"
	"github.com/askiada/go-image-pipeline/pkg/pipeline"
	"github.com/askiada/go-image-pipeline/pkg/pipeline/drawer"
	"github.com/askiada/go-image-pipeline/pkg/pipeline/measure"
	"github.com/askiada/go-image-pipeline/pkg/pipeline/model"
)

// Config represents the configuration loaded from YAML.
type Config struct {
	Pipeline    Pipeline    `yaml:"pipeline"`
	Gradient    Gradient    `yaml:"gradient"`
	KeepObjects KeepObjects `yaml:"keepObjects"`
}

// Pipeline configures the graph itself.
type Pipeline struct {
	// Workers caps the goroutines of a single node execution. Zero means one per CPU.
	Workers int `yaml:"workers"`
	// LogLevel is one of trace, debug, info, warn or error.
	LogLevel string `yaml:"logLevel"`
	// Measure collects per node metrics.
	Measure bool `yaml:"measure"`
	// DrawFile, when set, receives a DOT drawing of the graph once it is closed.
	DrawFile string `yaml:"drawFile"`
}

// Gradient configures the recursive Gaussian gradient.
type Gradient struct {
	Sigma                float64 `yaml:"sigma"`
	NormalizeAcrossScale bool    `yaml:"normalizeAcrossScale"`
}

// KeepObjects configures the binary shape keep N objects filter.
type KeepObjects struct {
	ForegroundValue float64 `yaml:"foregroundValue"`
	BackgroundValue float64 `yaml:"backgroundValue"`
	FullyConnected  bool    `yaml:"fullyConnected"`
	Attribute       string  `yaml:"attribute"`
	NumberOfObjects int     `yaml:"numberOfObjects"`
	ReverseOrdering bool    `yaml:"reverseOrdering"`
}

var logLevels = []string{"", "trace", "debug", "info", "warn", "warning", "error"}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Pipeline.Workers = runtime.NumCPU()
	cfg.Pipeline.LogLevel = "info"
	cfg.Pipeline.Measure = true

	cfg.Gradient.Sigma = 1

	cfg.KeepObjects.ForegroundValue = 255
	cfg.KeepObjects.Attribute = labelmap.AttributeNumberOfPixels.String()
	cfg.KeepObjects.NumberOfObjects = 1

	return cfg
}

// LoadConfig loads the configuration from a YAML file, over the defaults.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read config file")
	}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse config file")
	}

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig writes the configuration to a YAML file, creating its directory.
func SaveConfig(cfg *Config, configPath string) error {
	err := os.MkdirAll(filepath.Dir(configPath), 0o755)
	if err != nil {
		return errors.Wrap(err, "unable to create config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "unable to marshal config")
	}

	err = os.WriteFile(configPath, data, 0o644)
	if err != nil {
		return errors.Wrap(err, "unable to write config file")
	}

	return nil
}

// Validate checks every value that can be checked without knowing the pixel type.
func (c *Config) Validate() error {
	if c.Pipeline.Workers < 0 {
		return errors.Wrapf(pipeline.ErrInvalidParameter, "workers must not be negative, got %d", c.Pipeline.Workers)
	}

	if !validLogLevel(c.Pipeline.LogLevel) {
		return errors.Wrapf(pipeline.ErrInvalidParameter, "unknown log level %q", c.Pipeline.LogLevel)
	}

	if !(c.Gradient.Sigma > 0) || math.IsInf(c.Gradient.Sigma, 0) {
		return errors.Wrapf(pipeline.ErrInvalidParameter, "sigma must be positive and finite, got %v", c.Gradient.Sigma)
	}

	if c.KeepObjects.NumberOfObjects < 0 {
		return errors.Wrapf(pipeline.ErrInvalidParameter, "number of objects must not be negative, got %d", c.KeepObjects.NumberOfObjects)
	}

	_, err := labelmap.AttributeFromName(c.KeepObjects.Attribute)
	if err != nil {
		return err
	}

	return nil
}

func validLogLevel(level string) bool {
	for _, l := range logLevels {
		if strings.EqualFold(l, level) {
			return true
		}
	}

	return false
}

// NewGraph creates a graph with the configured workers and logger. The measure, nil unless enabled,
// and the drawer are registered as hooks; the drawing is written when the graph is closed.
func NewGraph(cfg *Config) (*pipeline.Graph, measure.Measure, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, nil, err
	}

	var (
		msr   measure.Measure
		hooks []model.GraphOption
	)

	if cfg.Pipeline.Measure {
		msr = measure.NewDefaultMeasure()
		hooks = append(hooks, measure.GraphMeasure(msr))
	}

	if cfg.Pipeline.DrawFile != "" {
		hooks = append(hooks, drawer.GraphDrawer(drawer.NewDOTDrawer(cfg.Pipeline.DrawFile), msr))
	}

	g, err := pipeline.New(
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithLogger(logger.New(cfg.Pipeline.LogLevel, os.Stderr)),
		pipeline.WithHooks(hooks...),
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to create graph")
	}

	return g, msr, nil
}

// ApplyGradient sets the gradient parameters of f.
func ApplyGradient[T image.Pixel](f *gradient.Filter[T], cfg Gradient) {
	f.SetSigma(cfg.Sigma)
	f.SetNormalizeAcrossScale(cfg.NormalizeAcrossScale)
}

// ApplyKeepObjects sets the keep N objects parameters of f. Foreground and background values must
// be representable as T.
func ApplyKeepObjects[T image.Pixel](f *binaryshape.Filter[T], cfg KeepObjects) error {
	foreground, err := pixelValue[T](cfg.ForegroundValue)
	if err != nil {
		return errors.Wrap(err, "foreground value")
	}

	background, err := pixelValue[T](cfg.BackgroundValue)
	if err != nil {
		return errors.Wrap(err, "background value")
	}

	err = f.SetAttributeName(cfg.Attribute)
	if err != nil {
		return err
	}

	f.SetForegroundValue(foreground)
	f.SetBackgroundValue(background)
	f.SetFullyConnected(cfg.FullyConnected)
	f.SetNumberOfObjects(cfg.NumberOfObjects)
	f.SetReverseOrdering(cfg.ReverseOrdering)

	return nil
}

func pixelValue[T image.Pixel](v float64) (T, error) {
	p := T(v)
	if float64(p) != v {
		return p, errors.Wrapf(pipeline.ErrNumericOverflow, "%v does not fit the pixel type", v)
	}

	return p, nil
}

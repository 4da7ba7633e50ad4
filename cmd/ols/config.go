package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aouyang1/go-ols/linearmodel"
	"github.com/goccy/go-yaml"
)

var ErrUnknownProfile = errors.New("unknown profile mode")

// Config holds every setting of a run. Values come from an optional yaml file and flags set
// on the command line take precedence.
type Config struct {
	ConfigPath string `yaml:"-"`
	LogLevel   string `yaml:"log_level"`
	Profile    string `yaml:"profile"`

	Data   string `yaml:"data"`
	Target string `yaml:"target"`
	Params string `yaml:"params"`
	Out    string `yaml:"out"`
	Plot   string `yaml:"plot"`

	NoIntercept   bool       `yaml:"no_intercept"`
	RankTolerance float64    `yaml:"rank_tolerance"`
	Labels        stringList `yaml:"labels"`
	JSON          bool       `yaml:"json"`

	NumObservations int       `yaml:"observations"`
	Intercept       float64   `yaml:"intercept"`
	Coef            floatList `yaml:"coef"`
	FeatureMin      float64   `yaml:"feature_min"`
	FeatureMax      float64   `yaml:"feature_max"`
	NoiseScale      float64   `yaml:"noise"`
	Seed            uint64    `yaml:"seed"`
}

// NewDefaultConfig returns the settings used when neither a file nor a flag provides a value
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		Target:          "y",
		RankTolerance:   linearmodel.DefaultRankTolerance,
		NumObservations: 100,
		Intercept:       1.0,
		Coef:            floatList{2.0},
		FeatureMin:      0.0,
		FeatureMax:      10.0,
	}
}

// Validate runs basic validation on the run config
func (c *Config) Validate() (*Config, error) {
	if c == nil {
		c = NewDefaultConfig()
	}
	switch c.Profile {
	case "", "cpu", "mem":
	default:
		return nil, fmt.Errorf("%q, %w", c.Profile, ErrUnknownProfile)
	}
	return c, nil
}

// LoadConfigFile overlays the yaml file at path onto c
func (c *Config) LoadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("unable to read config %s, %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("unable to parse config %s, %w", path, err)
	}
	return nil
}

// newFlagSet binds the flags of a subcommand to cfg
func newFlagSet(name string, cfg *Config, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cfg.ConfigPath, "config", "", "yaml file with run settings")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	fs.StringVar(&cfg.Profile, "profile", cfg.Profile, "write a cpu or mem profile to the working directory")

	switch name {
	case cmdFit:
		fs.StringVar(&cfg.Data, "data", cfg.Data, "training csv with a header row")
		fs.StringVar(&cfg.Target, "target", cfg.Target, "response column name")
		fs.StringVar(&cfg.Out, "out", cfg.Out, "parameter file to write (.json, .csv, .txt, .bin)")
		fs.StringVar(&cfg.Plot, "plot", cfg.Plot, "html file to plot the fit into")
		fs.BoolVar(&cfg.NoIntercept, "no-intercept", cfg.NoIntercept, "fix the intercept at 0")
		fs.Float64Var(&cfg.RankTolerance, "rank-tolerance", cfg.RankTolerance, "relative tolerance for rank deficiency")
	case cmdPredict:
		fs.StringVar(&cfg.Params, "params", cfg.Params, "parameter file written by fit")
		fs.StringVar(&cfg.Data, "data", cfg.Data, "csv of observations with a header row")
		fs.StringVar(&cfg.Target, "target", "prediction", "name of the prediction column")
		fs.StringVar(&cfg.Out, "out", cfg.Out, "csv to write predictions to, stdout if empty")
	case cmdShow:
		fs.StringVar(&cfg.Params, "params", cfg.Params, "parameter file written by fit")
		fs.Var(&cfg.Labels, "labels", "comma separated feature names")
		fs.BoolVar(&cfg.JSON, "json", cfg.JSON, "print the model as json")
	case cmdSimulate:
		fs.IntVar(&cfg.NumObservations, "n", cfg.NumObservations, "number of observations")
		fs.Float64Var(&cfg.Intercept, "intercept", cfg.Intercept, "intercept of the generated data")
		fs.Var(&cfg.Coef, "coef", "comma separated feature coefficients")
		fs.Float64Var(&cfg.FeatureMin, "feature-min", cfg.FeatureMin, "lower bound of feature values")
		fs.Float64Var(&cfg.FeatureMax, "feature-max", cfg.FeatureMax, "upper bound of feature values")
		fs.Float64Var(&cfg.NoiseScale, "noise", cfg.NoiseScale, "standard deviation of gaussian noise")
		fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
		fs.StringVar(&cfg.Target, "target", cfg.Target, "response column name")
		fs.StringVar(&cfg.Out, "out", cfg.Out, "csv to write, stdout if empty")
	}
	return fs
}

// parseConfig resolves the config of a subcommand. Flags are parsed a second time after the
// yaml file is applied so that explicit flags win.
func parseConfig(name string, args []string, stderr io.Writer) (*Config, error) {
	cfg := NewDefaultConfig()
	fs := newFlagSet(name, cfg, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.ConfigPath != "" {
		if err := cfg.LoadConfigFile(cfg.ConfigPath); err != nil {
			return nil, err
		}
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}
	return cfg.Validate()
}

type floatList []float64

func (f *floatList) String() string {
	if f == nil {
		return ""
	}
	parts := make([]string, 0, len(*f))
	for _, v := range *f {
		parts = append(parts, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return strings.Join(parts, ",")
}

func (f *floatList) Set(s string) error {
	var vals floatList
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return err
		}
		vals = append(vals, v)
	}
	*f = vals
	return nil
}

type stringList []string

func (s *stringList) String() string {
	if s == nil {
		return ""
	}
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	var vals stringList
	for _, part := range strings.Split(v, ",") {
		vals = append(vals, strings.TrimSpace(part))
	}
	*s = vals
	return nil
}

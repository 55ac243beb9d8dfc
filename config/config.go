// Package config holds the export options read from a YAML file.
package config

import (
	"io"
	"os"

	"github.com/binzume/bf3dconv/bf3d"
	"github.com/binzume/bf3dconv/geom"
	"github.com/binzume/bf3dconv/logger"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Axis struct {
	FromForward string `yaml:"from_forward"`
	FromUp      string `yaml:"from_up"`
	ToForward   string `yaml:"to_forward"`
	ToUp        string `yaml:"to_up"`
}

type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Config struct {
	FrameRate   int     `yaml:"frame_rate"`
	Animation   string  `yaml:"animation"`
	BoundingBox string  `yaml:"bounding_box"`
	FlipV       bool    `yaml:"flip_v"`
	VMDScale    float32 `yaml:"vmd_scale"`
	Axis        Axis    `yaml:"axis"`
	Logging     Logging `yaml:"logging"`
}

func Default() *Config {
	return &Config{
		FrameRate:   30,
		BoundingBox: "BOUNDINGBOX",
		VMDScale:    0.08,
		Axis: Axis{
			FromForward: "Y",
			FromUp:      "Z",
			ToForward:   "-Z",
			ToUp:        "Y",
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func Read(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && err != io.EOF {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.FrameRate <= 0 {
		return errors.Errorf("frame_rate must be positive, got %d", c.FrameRate)
	}
	if c.VMDScale <= 0 {
		return errors.Errorf("vmd_scale must be positive, got %v", c.VMDScale)
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	_, err := c.Transform()
	return err
}

// Transform builds the encoder transform from the axis settings.
func (c *Config) Transform() (*bf3d.Transform, error) {
	var axes [4]geom.Axis
	for i, s := range []string{c.Axis.FromForward, c.Axis.FromUp, c.Axis.ToForward, c.Axis.ToUp} {
		a, err := geom.ParseAxis(s)
		if err != nil {
			return nil, errors.Wrap(err, "axis")
		}
		axes[i] = a
	}
	t, err := bf3d.NewTransform(axes[0], axes[1], axes[2], axes[3])
	return t, errors.Wrap(err, "axis")
}

func (c *Config) LoggerConfig() logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = c.Logging.Level
	if c.Logging.File != "" {
		cfg.File = logger.DefaultFileConfig(c.Logging.File)
	}
	return cfg
}

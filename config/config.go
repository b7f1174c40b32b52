// Package config loads the renderer settings from TOML.
package config

import (
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/perlw/myrcube/myr"
)

type Camera struct {
	Speed      float32 `toml:"speed"`
	AngleSpeed float32 `toml:"angle_speed"`
}

type Config struct {
	Title          string `toml:"title"`
	Width          int    `toml:"width"`
	Height         int    `toml:"height"`
	FramesInFlight int    `toml:"frames_in_flight"`
	ShaderDir      string `toml:"shader_dir"`
	Validation     bool   `toml:"validation"`
	HUD            bool   `toml:"hud"`
	Trace          bool   `toml:"trace"`
	Camera         Camera `toml:"camera"`
}

func Default() Config {
	return Config{
		Title:          "Vulkan Uniform Buffers",
		Width:          800,
		Height:         600,
		FramesInFlight: 2,
		ShaderDir:      "shaders",
		Camera: Camera{
			Speed:      1.0,
			AngleSpeed: 0.01,
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default, unknown keys are an error.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "could not open config")
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, errors.Wrapf(err, "could not load %s", path)
	}
	return cfg, nil
}

func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, errors.New(strict.String())
		}
		return Config{}, errors.Wrap(err, "could not decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return errors.Errorf("invalid window size %dx%d", c.Width, c.Height)
	case c.FramesInFlight < 1:
		return errors.Errorf("frames_in_flight must be at least 1, got %d", c.FramesInFlight)
	case c.ShaderDir == "":
		return errors.New("shader_dir is empty")
	case c.Camera.Speed < 0 || c.Camera.AngleSpeed < 0:
		return errors.New("camera speeds must not be negative")
	}
	return nil
}

// Options is the engine's view of the config.
func (c Config) Options() myr.Options {
	return myr.Options{
		FramesInFlight: c.FramesInFlight,
		ShaderDir:      c.ShaderDir,
		CameraSpeed:    c.Camera.Speed,
		AngleSpeed:     c.Camera.AngleSpeed,
	}
}

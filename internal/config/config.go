// Package config loads the YAML configuration of the physx command.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/alanjfs/physx"
	"github.com/alanjfs/physx/actor"
	"github.com/alanjfs/physx/internal/log"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Scene    SceneConfig    `yaml:"scene"`
	Material MaterialConfig `yaml:"material"`
	Log      LogConfig      `yaml:"log"`
}

type SceneConfig struct {
	Gravity           [3]float64 `yaml:"gravity"`
	Substeps          int        `yaml:"substeps"`
	Workers           int        `yaml:"workers"`
	GridCellSize      float64    `yaml:"grid_cell_size"`
	GridCells         int        `yaml:"grid_cells"`
	SleepTime         float64    `yaml:"sleep_time"`
	SleepVelocity     float64    `yaml:"sleep_velocity"`
	ContactCompliance float64    `yaml:"contact_compliance"`
}

type MaterialConfig struct {
	StaticFriction  float64 `yaml:"static_friction"`
	DynamicFriction float64 `yaml:"dynamic_friction"`
	Restitution     float64 `yaml:"restitution"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	desc := physx.DefaultSceneDesc()
	material := actor.DefaultMaterial

	return &Config{
		Scene: SceneConfig{
			Gravity:           [3]float64(desc.Gravity),
			Substeps:          desc.Substeps,
			Workers:           desc.Workers,
			GridCellSize:      desc.GridCellSize,
			GridCells:         desc.GridCells,
			SleepTime:         desc.SleepTime,
			SleepVelocity:     desc.SleepVelocity,
			ContactCompliance: desc.ContactCompliance,
		},
		Material: MaterialConfig{
			StaticFriction:  material.StaticFriction,
			DynamicFriction: material.DynamicFriction,
			Restitution:     material.Restitution,
		},
		Log: LogConfig{
			Level:  "info",
			Format: log.FormatConsole,
		},
	}
}

// Load reads path over the defaults: keys missing from the file keep their
// default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if err := c.SceneDesc(nil).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	m := c.Material
	if m.StaticFriction < 0 || m.DynamicFriction < 0 {
		return fmt.Errorf("%w: negative friction %v, %v", ErrInvalidConfig, m.StaticFriction, m.DynamicFriction)
	}
	if m.Restitution < 0 || m.Restitution > 1 {
		return fmt.Errorf("%w: restitution %v outside [0, 1]", ErrInvalidConfig, m.Restitution)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := log.ValidateFormat(c.Log.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// SceneDesc returns the scene descriptor, logging to logger.
func (c *Config) SceneDesc(logger *zap.Logger) physx.SceneDesc {
	s := c.Scene
	return physx.SceneDesc{
		Gravity:           mgl64.Vec3(s.Gravity),
		Substeps:          s.Substeps,
		Workers:           s.Workers,
		GridCellSize:      s.GridCellSize,
		GridCells:         s.GridCells,
		SleepTime:         s.SleepTime,
		SleepVelocity:     s.SleepVelocity,
		ContactCompliance: s.ContactCompliance,
		Logger:            logger,
	}
}

func (m MaterialConfig) Material() actor.Material {
	return actor.NewMaterial(m.StaticFriction, m.DynamicFriction, m.Restitution)
}

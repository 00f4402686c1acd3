// Package config handles mesher configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all mesher settings.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Mesher  MesherConfig  `yaml:"mesher"`
	Scene   SceneConfig   `yaml:"scene"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds asset file paths.
type DataConfig struct {
	WorldPath    string `yaml:"world_path"`    // gzip voxel world
	TemplatePath string `yaml:"template_path"` // cube template; empty uses the built-in basic cube
}

// MesherConfig holds chunk meshing and rebuild settings.
type MesherConfig struct {
	MaxLevel           int           `yaml:"max_level"` // 8 = Cube256
	FarCullDistance    float32       `yaml:"far_cull_distance"`
	RebuildInterval    time.Duration `yaml:"rebuild_interval"`
	CancelPollInterval time.Duration `yaml:"cancel_poll_interval"`
	MaxChunkVertices   int           `yaml:"max_chunk_vertices"`
	Workers            int           `yaml:"workers"` // 0 = runtime.NumCPU()
	Batch              BatchConfig   `yaml:"batch"`
	LevelColors        []float32     `yaml:"level_colors"`
}

// BatchConfig holds the work-splitting granularity of each parallel job.
type BatchConfig struct {
	Count    int `yaml:"count"`
	Index    int `yaml:"index"`
	Scatter  int `yaml:"scatter"`
	Distance int `yaml:"distance"`
	Bake     int `yaml:"bake"`
}

// SceneConfig describes the roots and the points that drive subdivision.
type SceneConfig struct {
	Parents           [][3]float32 `yaml:"parents"`
	InteractionPoints [][3]float32 `yaml:"interaction_points"`
	Camera            CameraConfig `yaml:"camera"`
}

// CameraConfig holds the orbit camera used as the view point.
type CameraConfig struct {
	Center   [3]float32 `yaml:"center"`
	Distance float32    `yaml:"distance"`
	Pitch    float32    `yaml:"pitch"`
	YawSpeed float32    `yaml:"yaw_speed"` // radians per second
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			WorldPath:    "world000.gz",
			TemplatePath: "",
		},
		Mesher: MesherConfig{
			MaxLevel:           8,
			FarCullDistance:    256,
			RebuildInterval:    10 * time.Second,
			CancelPollInterval: 100 * time.Millisecond,
			MaxChunkVertices:   50_000_000,
			Workers:            0,
			Batch: BatchConfig{
				Count:    8,
				Index:    128,
				Scatter:  8,
				Distance: 1,
				Bake:     1,
			},
			LevelColors: []float32{0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1.0},
		},
		Scene: SceneConfig{
			Parents:           [][3]float32{{0, 0, 0}},
			InteractionPoints: [][3]float32{{128, 64, 128}},
			Camera: CameraConfig{
				Center:   [3]float32{128, 64, 128},
				Distance: 300,
				Pitch:    0.5,
				YawSpeed: 0.2,
			},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate rejects settings the mesher cannot run with.
func (c *Config) Validate() error {
	m := c.Mesher
	if m.MaxLevel < 0 || m.MaxLevel > 8 {
		return fmt.Errorf("%w: max_level %d outside 0..8", ErrInvalid, m.MaxLevel)
	}
	if m.RebuildInterval <= 0 {
		return fmt.Errorf("%w: rebuild_interval must be positive", ErrInvalid)
	}
	if m.CancelPollInterval <= 0 {
		return fmt.Errorf("%w: cancel_poll_interval must be positive", ErrInvalid)
	}
	if m.MaxChunkVertices <= 0 {
		return fmt.Errorf("%w: max_chunk_vertices must be positive", ErrInvalid)
	}
	if m.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalid)
	}
	if len(c.Scene.Parents) == 0 {
		return fmt.Errorf("%w: at least one scene parent is required", ErrInvalid)
	}
	return nil
}

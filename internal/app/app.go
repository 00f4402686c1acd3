// Package app wires the configured world, template, scene and camera to the
// mesher and drives periodic rebuilds.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/octomesh/internal/camera"
	"github.com/Faultbox/octomesh/internal/config"
	"github.com/Faultbox/octomesh/internal/logger"
	"github.com/Faultbox/octomesh/internal/mesher"
	"github.com/Faultbox/octomesh/internal/scene"
	"github.com/Faultbox/octomesh/pkg/cubetemplate"
	"github.com/Faultbox/octomesh/pkg/voxel"
)

// App is a headless mesher instance.
type App struct {
	cfg    *config.Config
	scene  *scene.Scene
	camera *camera.OrbitCamera
	mesher *mesher.Mesher
	log    *zap.Logger
}

// New loads the world and template and creates one root per configured parent.
func New(cfg *config.Config) (*App, error) {
	log := logger.Named("app")

	grid, err := voxel.ReadFile(cfg.Data.WorldPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load world: %w", err)
	}
	log.Info("world loaded", zap.String("path", cfg.Data.WorldPath), zap.Int("edge", grid.Edge()))

	tmpl, err := loadTemplate(cfg.Data.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load cube template: %w", err)
	}

	a := &App{
		cfg:    cfg,
		scene:  scene.New(),
		camera: newCamera(cfg.Scene.Camera),
		log:    log,
	}

	a.mesher, err = mesher.Initialize(grid, tmpl, mesher.Collaborators{Factory: a.scene, View: a.camera}, options(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mesher: %w", err)
	}

	for _, p := range cfg.Scene.Parents {
		if _, err := a.mesher.AddRoot(a.scene.Root(), mgl32.Vec3(p)); err != nil {
			a.Close()
			return nil, err
		}
	}
	log.Info("roots created", zap.Int("count", len(cfg.Scene.Parents)))
	return a, nil
}

func loadTemplate(path string) (*cubetemplate.Template, error) {
	if path == "" {
		return cubetemplate.Basic(), nil
	}
	return cubetemplate.ReadFile(path)
}

func newCamera(cfg config.CameraConfig) *camera.OrbitCamera {
	c := camera.NewOrbitCamera()
	c.Center = mgl32.Vec3(cfg.Center)
	c.Distance = cfg.Distance
	c.RotationX = cfg.Pitch
	c.YawSpeed = cfg.YawSpeed
	return c
}

func options(cfg *config.Config) mesher.Options {
	m := cfg.Mesher
	opts := mesher.DefaultOptions()
	opts.MaxLevel = mesher.ChunkLevel(m.MaxLevel)
	opts.Workers = m.Workers
	opts.FarCullDistance = m.FarCullDistance
	opts.PollInterval = m.CancelPollInterval
	opts.MaxChunkVertices = m.MaxChunkVertices
	opts.Batch = mesher.BatchSizes{
		Count:    m.Batch.Count,
		Index:    m.Batch.Index,
		Scatter:  m.Batch.Scatter,
		Distance: m.Batch.Distance,
		Bake:     m.Batch.Bake,
	}
	if len(m.LevelColors) > 0 {
		opts.LevelColors = m.LevelColors
	}
	return opts
}

// Mesher returns the mesher driven by the app.
func (a *App) Mesher() *mesher.Mesher {
	return a.mesher
}

// Scene returns the scene holding the generated surfaces.
func (a *App) Scene() *scene.Scene {
	return a.scene
}

// InteractionPoints returns the configured points plus the camera position.
func (a *App) InteractionPoints() []mgl32.Vec3 {
	points := make([]mgl32.Vec3, 0, len(a.cfg.Scene.InteractionPoints)+1)
	for _, p := range a.cfg.Scene.InteractionPoints {
		points = append(points, mgl32.Vec3(p))
	}
	return append(points, a.camera.Position())
}

// Run triggers a rebuild now, every rebuild interval, and on every request,
// until ctx is done.
func (a *App) Run(ctx context.Context, requests <-chan struct{}) error {
	if err := a.rebuild("startup"); err != nil {
		return err
	}

	ticker := time.NewTicker(a.cfg.Mesher.RebuildInterval)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			a.camera.Orbit(now.Sub(last))
			last = now
			if err := a.rebuild("timer"); err != nil {
				return err
			}
		case <-requests:
			if err := a.rebuild("request"); err != nil {
				return err
			}
		}
	}
}

func (a *App) rebuild(reason string) error {
	points := a.InteractionPoints()
	a.log.Debug("rebuild", zap.String("reason", reason), zap.Int("points", len(points)))
	return a.mesher.Trigger(points)
}

// Close stops the mesher and releases every surface.
func (a *App) Close() {
	a.log.Info("closing", zap.Any("scene", a.scene.Stats()))
	if err := a.mesher.Shutdown(); err != nil {
		a.log.Warn("mesher shutdown", zap.Error(err))
	}
}

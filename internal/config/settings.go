package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Palette names accepted by the palette key.
const (
	PaletteDefault = "default"
	PalettePastel  = "pastel"
)

// Settings is the on-disk viewer configuration.
type Settings struct {
	Identifier      string        `yaml:"identifier"`
	ChunksPerRegion int           `yaml:"chunks_per_region"`
	RenderDistance  int           `yaml:"render_distance"`
	EvictDistance   int           `yaml:"evict_distance"`
	EvictInterval   time.Duration `yaml:"evict_interval"`
	IngestQueueSize int           `yaml:"ingest_queue_size"`
	MeshWorkers     int           `yaml:"mesh_workers"`
	FPSLimit        int           `yaml:"fps_limit"`
	Palette         string        `yaml:"palette"`

	Terrain Terrain `yaml:"terrain"`
	Window  Window  `yaml:"window"`
}

type Terrain struct {
	Seed      int64 `yaml:"seed"`
	SeaLevel  int   `yaml:"sea_level"`
	Amplitude int   `yaml:"amplitude"`
}

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Identifier:      "main",
		ChunksPerRegion: 16,
		RenderDistance:  12,
		EvictDistance:   24,
		EvictInterval:   time.Second,
		IngestQueueSize: 4096,
		MeshWorkers:     0,
		FPSLimit:        120,
		Palette:         PaletteDefault,
		Terrain: Terrain{
			Seed:      1,
			SeaLevel:  48,
			Amplitude: 40,
		},
		Window: Window{
			Width:  900,
			Height: 600,
			Title:  "voxelview",
		},
	}
}

// Load reads a YAML settings file on top of Default. An empty path returns the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate rejects settings the renderer cannot work with.
func (s Settings) Validate() error {
	var errs []error
	if s.Identifier == "" {
		errs = append(errs, errors.New("identifier must not be empty"))
	}
	if s.ChunksPerRegion <= 0 {
		errs = append(errs, fmt.Errorf("chunks_per_region must be positive, got %d", s.ChunksPerRegion))
	}
	if s.RenderDistance <= 0 {
		errs = append(errs, fmt.Errorf("render_distance must be positive, got %d", s.RenderDistance))
	}
	if s.EvictDistance < 0 {
		errs = append(errs, fmt.Errorf("evict_distance must not be negative, got %d", s.EvictDistance))
	}
	if s.EvictInterval < 0 {
		errs = append(errs, fmt.Errorf("evict_interval must not be negative, got %v", s.EvictInterval))
	}
	if s.IngestQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("ingest_queue_size must be positive, got %d", s.IngestQueueSize))
	}
	if s.MeshWorkers < 0 {
		errs = append(errs, fmt.Errorf("mesh_workers must not be negative, got %d", s.MeshWorkers))
	}
	if s.Palette != PaletteDefault && s.Palette != PalettePastel {
		errs = append(errs, fmt.Errorf("palette must be %q or %q, got %q", PaletteDefault, PalettePastel, s.Palette))
	}
	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", s.Window.Width, s.Window.Height))
	}
	return errors.Join(errs...)
}

// Apply pushes the runtime-adjustable part of s into the package-level settings.
func (s Settings) Apply() {
	SetRenderDistance(s.RenderDistance)
	SetEvictDistance(s.EvictDistance)
	SetFPSLimit(s.FPSLimit)
	SetSeed(s.Terrain.Seed)
	SetSeaLevel(s.Terrain.SeaLevel)
	SetAmplitude(s.Terrain.Amplitude)
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voxelview.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
chunks_per_region: 8
render_distance: 6
evict_interval: 250ms
terrain:
  seed: 99
window:
  title: test
`)
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.ChunksPerRegion != 8 || s.RenderDistance != 6 || s.EvictInterval != 250*time.Millisecond {
		t.Fatalf("settings = %+v", s)
	}
	if s.Terrain.Seed != 99 || s.Terrain.SeaLevel != 48 {
		t.Fatalf("terrain = %+v, want seed override and default sea level", s.Terrain)
	}
	if s.Window.Title != "test" || s.Window.Width != 900 {
		t.Fatalf("window = %+v", s.Window)
	}
	if s.Identifier != "main" {
		t.Fatalf("identifier = %q, want default", s.Identifier)
	}
}

func TestLoadEmptyPathIsDefault(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if s != Default() {
		t.Fatalf("settings = %+v, want defaults", s)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeFile(t, "chunks_per_region: 0\ningest_queue_size: -1\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "chunks_per_region") || !strings.Contains(msg, "ingest_queue_size") {
		t.Fatalf("error %q does not name both fields", msg)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeFile(t, "render_distance: [oops\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestRenderDistanceClamp(t *testing.T) {
	defer Default().Apply()

	SetRenderDistance(1000)
	if got := GetRenderDistance(); got != 64 {
		t.Fatalf("render distance = %d, want 64", got)
	}
	if GetEvictDistance() < 64 {
		t.Fatalf("evict distance %d inside render distance", GetEvictDistance())
	}
	SetEvictDistance(3)
	if GetEvictDistance() != 64 {
		t.Fatalf("evict distance = %d, want clamped to render distance", GetEvictDistance())
	}
}

func TestApply(t *testing.T) {
	s := Default()
	s.FPSLimit = -5
	s.Terrain.Seed = 7
	s.Apply()
	if GetFPSLimit() != 0 || GetSeed() != 7 {
		t.Fatalf("fps=%d seed=%d", GetFPSLimit(), GetSeed())
	}
	Default().Apply()
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*Settings)
		field string
	}{
		{"negative evict distance", func(s *Settings) { s.EvictDistance = -1 }, "evict_distance"},
		{"zero window width", func(s *Settings) { s.Window.Width = 0 }, "window size"},
		{"negative window height", func(s *Settings) { s.Window.Height = -600 }, "window size"},
		{"unknown palette", func(s *Settings) { s.Palette = "neon" }, "palette"},
		{"empty palette", func(s *Settings) { s.Palette = "" }, "palette"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Default()
			tc.edit(&s)
			err := s.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("err = %v, want one naming %s", err, tc.field)
			}
		})
	}
}

func TestLoadPalette(t *testing.T) {
	s, err := Load(writeFile(t, "palette: pastel\n"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Palette != PalettePastel {
		t.Fatalf("palette = %q, want %q", s.Palette, PalettePastel)
	}
	if Default().Palette != PaletteDefault {
		t.Fatalf("default palette = %q", Default().Palette)
	}
}

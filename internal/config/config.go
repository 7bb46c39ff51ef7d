package config

import "sync"

// RenderSettings holds the runtime-adjustable render configuration
type RenderSettings struct {
	mu             sync.RWMutex
	renderDistance int // in chunks
	evictDistance  int // in chunks
	fpsLimit       int // 0 = unlimited
}

var globalRenderSettings = &RenderSettings{
	renderDistance: 12,
	evictDistance:  24,
	fpsLimit:       120,
}

// GetRenderDistance returns the current render distance in chunks
func GetRenderDistance() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.renderDistance
}

// SetRenderDistance sets the render distance in chunks. The eviction distance
// is pushed out so it never falls inside the render distance.
func SetRenderDistance(distance int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	// Clamp to reasonable values
	distance = min(max(distance, 2), 64)

	globalRenderSettings.renderDistance = distance
	if globalRenderSettings.evictDistance < distance {
		globalRenderSettings.evictDistance = distance
	}
}

// GetEvictDistance returns the radius in chunks outside of which regions are unloaded
func GetEvictDistance() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.evictDistance
}

// SetEvictDistance sets the eviction radius, never below the render distance
func SetEvictDistance(distance int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.evictDistance = max(distance, globalRenderSettings.renderDistance)
}

// GetFPSLimit returns the frame cap, 0 meaning unlimited
func GetFPSLimit() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.fpsLimit
}

// SetFPSLimit sets the frame cap; negative values disable it
func SetFPSLimit(limit int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.fpsLimit = max(limit, 0)
}

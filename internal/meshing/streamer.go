package meshing

import (
	"voxelview/internal/profiling"
	"voxelview/internal/regions"
)

// DefaultMaxJobsPerCall caps how many chunks one StreamAround call requests.
const DefaultMaxJobsPerCall = 256

// Streamer requests the chunks around a point, nearest ring first, skipping
// chunks the sink already holds or the pool is already meshing.
type Streamer struct {
	pool *WorkerPool
	sink Sink

	maxJobsPerCall int
}

// NewStreamer returns a streamer feeding pool, which delivers into sink.
func NewStreamer(pool *WorkerPool, sink Sink) *Streamer {
	return &Streamer{pool: pool, sink: sink, maxJobsPerCall: DefaultMaxJobsPerCall}
}

// SetMaxJobsPerCall changes the per-call request cap. Non-positive values
// remove the cap.
func (s *Streamer) SetMaxJobsPerCall(n int) {
	s.maxJobsPerCall = n
}

// StreamAround queues missing chunks within radius chunks of world block
// position (x, z) and returns how many were queued.
func (s *Streamer) StreamAround(x, z float64, radius int) int {
	defer profiling.Track("meshing.StreamAround")()
	center := regions.ChunkAt(x, z)

	jobsPushed := 0
	forEachRing(center, radius, func(c regions.ChunkCoord) bool {
		if s.maxJobsPerCall > 0 && jobsPushed >= s.maxJobsPerCall {
			return false
		}
		if s.requestChunk(c) {
			jobsPushed++
		}
		return true
	})
	return jobsPushed
}

// StreamAroundSync meshes missing chunks on the calling goroutine and hands
// them straight to the sink. It stops at the first sink error.
func (s *Streamer) StreamAroundSync(x, z float64, radius int) (int, error) {
	defer profiling.Track("meshing.StreamAroundSync")()
	center := regions.ChunkAt(x, z)

	added := 0
	var err error
	forEachRing(center, radius, func(c regions.ChunkCoord) bool {
		if s.sink.Contains(c) || s.pool.InFlight(c) {
			return true
		}
		if err = s.sink.AddRenderableUnit(s.pool.mesher.MeshUnit(c)); err != nil {
			return false
		}
		added++
		return true
	})
	return added, err
}

func (s *Streamer) requestChunk(c regions.ChunkCoord) bool {
	if s.sink.Contains(c) {
		return false
	}
	return s.pool.Submit(c)
}

// forEachRing visits the square rings around center from the inside out,
// each ring clockwise from its north-west corner. visit returns false to stop.
func forEachRing(center regions.ChunkCoord, radius int, visit func(regions.ChunkCoord) bool) {
	if !visit(center) {
		return
	}
	for r := 1; r <= radius; r++ {
		x0, x1 := center.X-r, center.X+r
		z0, z1 := center.Z-r, center.Z+r

		for xk := x0; xk <= x1; xk++ {
			if !visit(regions.ChunkCoord{X: xk, Z: z0}) {
				return
			}
		}
		for zk := z0 + 1; zk <= z1-1; zk++ {
			if !visit(regions.ChunkCoord{X: x1, Z: zk}) {
				return
			}
		}
		for xk := x1; xk >= x0; xk-- {
			if !visit(regions.ChunkCoord{X: xk, Z: z1}) {
				return
			}
		}
		for zk := z1 - 1; zk >= z0+1; zk-- {
			if !visit(regions.ChunkCoord{X: x0, Z: zk}) {
				return
			}
		}
	}
}

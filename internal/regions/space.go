package regions

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"sync/atomic"

	"voxelview/internal/graphics"
	"voxelview/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultQueueCapacity bounds the ingestion queue when no option overrides it.
const DefaultQueueCapacity = 4096

// Option configures a Space.
type Option func(*Space)

// WithQueueCapacity bounds the number of units waiting for the render goroutine.
func WithQueueCapacity(n int) Option {
	return func(s *Space) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// Space maps the infinite chunk plane onto lazily created Regions.
//
// AddRenderableUnit and Contains may be called from any goroutine. Draw and
// Unload belong to the render goroutine; they are the only code touching the
// region map, so the map itself is not locked.
type Space struct {
	identifier      string
	chunksPerRegion int
	dev             graphics.Device
	shaders         graphics.ShaderProvider

	regions map[RegionCoord]*Region // render goroutine only

	mu       sync.Mutex
	capacity int
	queue    []*Unit
	queued   map[ChunkCoord]int      // coordinates waiting in queue, with multiplicity
	resident map[ChunkCoord]struct{} // coordinates held by some region

	rendering atomic.Bool
}

// NewSpace creates an empty space. chunksPerRegion must be positive.
func NewSpace(identifier string, chunksPerRegion int, dev graphics.Device, shaders graphics.ShaderProvider, opts ...Option) *Space {
	if chunksPerRegion <= 0 {
		panic(fmt.Sprintf("regions: chunks per region must be positive, got %d", chunksPerRegion))
	}
	s := &Space{
		identifier:      identifier,
		chunksPerRegion: chunksPerRegion,
		dev:             dev,
		shaders:         shaders,
		regions:         make(map[RegionCoord]*Region),
		capacity:        DefaultQueueCapacity,
		queued:          make(map[ChunkCoord]int),
		resident:        make(map[ChunkCoord]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Identifier returns the renderer identifier used for shader lookups.
func (s *Space) Identifier() string { return s.identifier }

// ChunksPerRegion returns the region edge length in chunks.
func (s *Space) ChunksPerRegion() int { return s.chunksPerRegion }

// RegionOf maps a chunk coordinate to its region in this space.
func (s *Space) RegionOf(c ChunkCoord) RegionCoord {
	return RegionOf(c, s.chunksPerRegion)
}

// AddRenderableUnit queues u for the next Draw. It never touches GPU state and
// only holds the queue lock briefly. The coordinate is visible to Contains
// before this call returns.
func (s *Space) AddRenderableUnit(u *Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) >= s.capacity {
		return ErrQueueFull
	}
	s.queue = append(s.queue, u)
	s.queued[u.Coord()]++
	return nil
}

// Contains reports whether c is waiting in the queue or held by a region.
func (s *Space) Contains(c ChunkCoord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queued[c] > 0 {
		return true
	}
	_, ok := s.resident[c]
	return ok
}

// QueueLen returns the number of units waiting for the render goroutine.
func (s *Space) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Space) enterRender(op string) {
	if !s.rendering.CompareAndSwap(false, true) {
		panic(fmt.Sprintf("regions: %s called while another render-side call is running", op))
	}
}

func (s *Space) leaveRender() {
	s.rendering.Store(false)
}

// Draw draws every region, then moves queued units into their regions.
// Units queued during this frame are drawn from the next frame on.
// Allocation failures are logged and returned joined; the affected regions
// are skipped and everything else is still drawn and drained.
func (s *Space) Draw(external mgl32.Mat4) error {
	s.enterRender("draw")
	defer s.leaveRender()
	defer profiling.Track("regions.Space.Draw")()

	var errs []error
	for _, rc := range s.Regions() {
		if err := s.regions[rc].Draw(external); err != nil {
			log.Printf("draw %v skipped: %v", rc, err)
			errs = append(errs, err)
		}
	}
	s.drain()
	return errors.Join(errs...)
}

// drain empties the queue in one pass. The batch leaves the queued set and
// enters the resident set in the same critical section so Contains never
// misses a coordinate in between.
func (s *Space) drain() {
	s.mu.Lock()
	batch := s.queue
	s.queue = nil
	for _, u := range batch {
		s.resident[u.Coord()] = struct{}{}
	}
	clear(s.queued)
	s.mu.Unlock()

	for _, u := range batch {
		rc := s.RegionOf(u.Coord())
		region, ok := s.regions[rc]
		if !ok {
			region = NewRegion(rc, s.chunksPerRegion, s.identifier, s.dev, s.shaders)
			s.regions[rc] = region
		}
		region.AddUnit(u)
	}
}

// Unload evicts regions. With a nil area everything is torn down, including
// queued units. Otherwise regions inside the region box covering area are
// merged and all others are unloaded and forgotten.
func (s *Space) Unload(area *Area) error {
	s.enterRender("unload")
	defer s.leaveRender()
	defer profiling.Track("regions.Space.Unload")()

	if area == nil {
		s.unloadAll()
		return nil
	}

	lo, hi := area.RegionBounds(s.chunksPerRegion)
	var errs []error
	evicted := 0
	for _, rc := range s.Regions() {
		region := s.regions[rc]
		if inBounds(rc, lo, hi) {
			if err := region.Merge(); err != nil {
				log.Printf("merge %v failed: %v", rc, err)
				errs = append(errs, err)
			}
			continue
		}
		s.forget(region.Chunks())
		region.Unload()
		delete(s.regions, rc)
		evicted++
	}
	if evicted > 0 {
		log.Printf("evicted %d regions outside %v..%v, %d remain", evicted, lo, hi, len(s.regions))
	}
	return errors.Join(errs...)
}

func (s *Space) unloadAll() {
	s.mu.Lock()
	dropped := s.queue
	s.queue = nil
	clear(s.queued)
	clear(s.resident)
	s.mu.Unlock()

	for _, u := range dropped {
		u.Release()
	}
	for rc, region := range s.regions {
		region.Unload()
		delete(s.regions, rc)
	}
}

// forget removes coordinates from the resident set. A newer unit for the same
// chunk still waiting in the queue stays visible through the queued set.
func (s *Space) forget(coords []ChunkCoord) {
	s.mu.Lock()
	for _, c := range coords {
		delete(s.resident, c)
	}
	s.mu.Unlock()
}

// Len returns the number of regions. Like Regions, Region and Stats it must
// only be called from the render goroutine.
func (s *Space) Len() int { return len(s.regions) }

// Regions returns the region coordinates in a stable order.
func (s *Space) Regions() []RegionCoord {
	coords := make([]RegionCoord, 0, len(s.regions))
	for rc := range s.regions {
		coords = append(coords, rc)
	}
	slices.SortFunc(coords, func(a, b RegionCoord) int {
		if a.X != b.X {
			return a.X - b.X
		}
		return a.Z - b.Z
	})
	return coords
}

// Region returns the region at rc, if it exists.
func (s *Space) Region(rc RegionCoord) (*Region, bool) {
	r, ok := s.regions[rc]
	return r, ok
}

// Stats summarizes every region in stable order.
func (s *Space) Stats() []RegionStats {
	out := make([]RegionStats, 0, len(s.regions))
	for _, rc := range s.Regions() {
		out = append(out, s.regions[rc].Stats())
	}
	return out
}

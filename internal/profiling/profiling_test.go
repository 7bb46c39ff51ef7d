package profiling

import (
	"strings"
	"testing"
	"time"
)

func TestCountAndReset(t *testing.T) {
	ResetFrame()
	Count("regions.drawCalls", 2)
	Count("regions.drawCalls", 3)
	if got := Counter("regions.drawCalls"); got != 5 {
		t.Fatalf("counter = %d, want 5", got)
	}
	ResetFrame()
	if got := Counter("regions.drawCalls"); got != 0 {
		t.Fatalf("counter after reset = %d, want 0", got)
	}
}

func TestTopNOrdersByDuration(t *testing.T) {
	ResetFrame()
	mu.Lock()
	frameTotals["fast"] = time.Millisecond
	frameTotals["slow"] = 3*time.Millisecond + 500*time.Microsecond
	mu.Unlock()

	got := TopN(5)
	if !strings.HasPrefix(got, "slow:3.5ms") {
		t.Fatalf("TopN = %q, want slow first", got)
	}
	if !strings.Contains(got, "fast:1ms") {
		t.Fatalf("TopN = %q, want trailing zero trimmed", got)
	}
	if one := TopN(1); strings.Contains(one, "fast") {
		t.Fatalf("TopN(1) = %q, want one entry", one)
	}
}

func TestTrackAccumulates(t *testing.T) {
	ResetFrame()
	stop := Track("x")
	time.Sleep(time.Millisecond)
	stop()
	if Snapshot()["x"] <= 0 {
		t.Fatal("Track recorded no time")
	}
}

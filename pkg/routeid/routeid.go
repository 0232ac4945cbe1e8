// Package routeid allocates next-hop identifiers for standard routes.
//
// Every standard route consumes two consecutive ids, an even uplink id and
// the odd downlink id after it. The pool is derived from the persisted
// artifacts rather than stored: the next free uplink id is
// 2*count(filtering-uplink-*.json) + 2. Id 1 is reserved for INT.
package routeid

import (
	"context"
	"fmt"
	"path"
	"sync"
)

const (
	// INTNextHopID is the fixed next id of the INT topology.
	INTNextHopID = 1

	// FirstStandardID is the uplink id of the first standard route.
	FirstStandardID = 2

	// UplinkFilteringPattern selects the artifacts that count as allocated routes.
	UplinkFilteringPattern = "filtering-uplink-*.json"
)

// NextID returns the next free uplink id given the names of every persisted
// artifact. Duplicate names are counted once.
func NextID(names []string) int {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if ok, _ := path.Match(UplinkFilteringPattern, n); ok {
			seen[n] = struct{}{}
		}
	}
	return 2*len(seen) + FirstStandardID
}

// Lister lists persisted artifact names matching a path.Match pattern.
// datastore.Datastore satisfies it.
type Lister interface {
	ListArtifacts(ctx context.Context, pattern string) ([]string, error)
}

// Mode controls when the allocator consults the artifact store.
type Mode string

const (
	// ModeRecompute queries the store before every allocation.
	ModeRecompute Mode = "recompute"

	// ModeOnce computes the id once and returns it for the whole session.
	ModeOnce Mode = "once"
)

// ParseMode parses an allocator mode name. Empty means ModeRecompute.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeRecompute:
		return ModeRecompute, nil
	case ModeOnce:
		return ModeOnce, nil
	default:
		return "", fmt.Errorf("unknown allocator mode %q (want %s or %s)", s, ModeRecompute, ModeOnce)
	}
}

// Allocator hands out uplink ids for a session.
type Allocator struct {
	lister Lister
	mode   Mode

	mu     sync.Mutex
	cached int
}

// NewAllocator creates an allocator over lister.
func NewAllocator(lister Lister, mode Mode) *Allocator {
	if mode == "" {
		mode = ModeRecompute
	}
	return &Allocator{lister: lister, mode: mode}
}

// Mode returns the allocation mode.
func (a *Allocator) Mode() Mode {
	return a.mode
}

// Next returns the uplink id for the next standard route. The downlink id
// is Next()+1.
func (a *Allocator) Next(ctx context.Context) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mode == ModeOnce && a.cached != 0 {
		return a.cached, nil
	}

	names, err := a.lister.ListArtifacts(ctx, UplinkFilteringPattern)
	if err != nil {
		return 0, err
	}

	a.cached = NextID(names)
	return a.cached, nil
}

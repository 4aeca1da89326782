package track

import (
	"errors"

	"github.com/synnergy/assetengine/engine/types"
)

// ErrLazyMapCycle is returned when a component's lazy-map graph, reachable
// from its root state, references itself.
var ErrLazyMapCycle = errors.New("track: cyclic lazy map reference")

// lazyMapRef is the minimal shape a Component/LazyMap's serialized state must
// expose so DetectLazyMapCycles can walk it without understanding blueprint
// payload encodings: a list of (owner, mid) pairs reachable from one node.
type lazyMapRef struct {
	Owner types.Address
	Mid   types.Mid
}

// DetectLazyMapCycles walks the lazy-map reference graph rooted at the given
// node using the supplied edge function, and reports ErrLazyMapCycle if any
// node is reachable from itself. engine/process does not call it when it
// loads a component's state.
func DetectLazyMapCycles(root lazyMapRef, edges func(lazyMapRef) []lazyMapRef) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[lazyMapRef]int)
	var visit func(n lazyMapRef) error
	visit = func(n lazyMapRef) error {
		color[n] = gray
		for _, next := range edges(n) {
			switch color[next] {
			case gray:
				return ErrLazyMapCycle
			case black:
				continue
			default:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		color[n] = black
		return nil
	}
	return visit(root)
}

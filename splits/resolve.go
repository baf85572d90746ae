package splits

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/tranvictor/feedme/common"
)

// ErrStale is returned for a resolution superseded by a newer input.
var ErrStale = errors.New("split resolution superseded")

// AddressResolver maps a name to the address it points at.
type AddressResolver interface {
	AddressOf(ctx context.Context, name string) (ethcommon.Address, error)
}

// Resolve fills ResolvedAddress for every entry concurrently. Either every
// entry resolves or the call fails with the first error.
func Resolve(ctx context.Context, splits []Split, names AddressResolver) ([]Split, error) {
	resolved := make([]Split, len(splits))
	copy(resolved, splits)

	for _, s := range resolved {
		if !common.IsAddress(s.Recipient) && !IsName(s.Recipient) {
			return nil, newError(KindInvalidRecipient, "Invalid recipient format: %s", s.Recipient)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := range resolved {
		i := i
		recipient := resolved[i].Recipient
		if common.IsAddress(recipient) {
			resolved[i].ResolvedAddress = recipient
			continue
		}
		g.Go(func() error {
			addr, err := names.AddressOf(ctx, recipient)
			if err != nil || addr == (ethcommon.Address{}) {
				return newError(KindInvalidRecipient, "Failed to resolve %s", recipient)
			}
			resolved[i].ResolvedAddress = addr.Hex()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

// Tracker resolves the current split set of an editing session. A set whose
// content matches the last successful resolution is served from memory, and
// only the most recently requested resolution may publish a result.
type Tracker struct {
	names AddressResolver

	mu         sync.Mutex
	generation uint64
	lastKey    string
	last       []Split
}

func NewTracker(names AddressResolver) *Tracker {
	return &Tracker{names: names}
}

func (t *Tracker) Resolve(ctx context.Context, splits []Split) ([]Split, error) {
	key := Key(splits)

	t.mu.Lock()
	if key == "" {
		t.generation++
		t.lastKey = ""
		t.last = nil
		t.mu.Unlock()
		return []Split{}, nil
	}
	if key == t.lastKey && len(t.last) > 0 {
		result := clone(t.last)
		t.mu.Unlock()
		return result, nil
	}
	t.generation++
	gen := t.generation
	t.mu.Unlock()

	resolved, err := Resolve(ctx, splits, t.names)

	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.generation {
		return nil, ErrStale
	}
	if err != nil {
		t.lastKey = ""
		t.last = nil
		return nil, fmt.Errorf("resolving splits: %w", err)
	}
	t.lastKey = key
	t.last = resolved
	return clone(resolved), nil
}

// Last returns the most recent successful resolution.
func (t *Tracker) Last() []Split {
	t.mu.Lock()
	defer t.mu.Unlock()
	return clone(t.last)
}

func clone(s []Split) []Split {
	if s == nil {
		return nil
	}
	out := make([]Split, len(s))
	copy(out, s)
	return out
}

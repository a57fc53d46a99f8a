package order

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
)

const (
	// idAttempts bounds the regeneration loop. With a 90k id space and
	// single-venue volume a collision chain this long does not happen.
	idAttempts = 8

	// Expected live id population for the bloom pre-filter sizing.
	idFilterCapacity = 100_000
	idFilterFPR      = 0.01
)

// IDGenerator produces short, human-speakable order numbers: random 5-digit
// numeric strings ("10000".."99999"). Generation alone does not guarantee
// uniqueness; candidates are screened against a bloom filter of known ids
// first (cheap, may false-positive) and then confirmed against the
// repository (authoritative) before being handed out.
type IDGenerator struct {
	mu   sync.Mutex
	seen *bloom.BloomFilter
}

// NewIDGenerator returns a generator with an empty filter.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{
		seen: bloom.NewWithEstimates(idFilterCapacity, idFilterFPR),
	}
}

// Seed marks existing order ids as taken, typically from a startup List.
func (g *IDGenerator) Seed(ids []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		g.seen.AddString(id)
	}
}

// Next generates an unused order id. exists is the authoritative collision
// check (a repository lookup); the bloom filter only short-circuits ids this
// process already handed out. Returns ErrIDSpaceExhausted after the retry
// budget is spent.
func (g *IDGenerator) Next(ctx context.Context, exists func(ctx context.Context, id string) (bool, error)) (string, error) {
	for range idAttempts {
		id := fmt.Sprintf("%05d", 10000+rand.IntN(90000))

		g.mu.Lock()
		maybeSeen := g.seen.TestString(id)
		g.mu.Unlock()
		if maybeSeen {
			continue
		}

		taken, err := exists(ctx, id)
		if err != nil {
			return "", errors.Wrap(err, "check order id")
		}
		if taken {
			g.mu.Lock()
			g.seen.AddString(id)
			g.mu.Unlock()
			continue
		}

		g.mu.Lock()
		g.seen.AddString(id)
		g.mu.Unlock()
		return id, nil
	}
	return "", ErrIDSpaceExhausted
}

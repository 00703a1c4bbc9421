package placement

import (
	"math/rand/v2"
	"sync"
)

// LockedRand serializes access to a Rand so one source can be shared by
// concurrent requests.
type LockedRand struct {
	mu sync.Mutex
	r  Rand
}

func NewLockedRand(r Rand) *LockedRand {
	return &LockedRand{r: r}
}

// NewSeededRand returns a goroutine-safe source seeded from seed, or from the
// runtime's entropy when seed is zero.
func NewSeededRand(seed uint64) *LockedRand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return NewLockedRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func (l *LockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *LockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

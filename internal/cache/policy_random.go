package cache

import "math/rand"

// Random evicts a uniformly random way, seeded for reproducible runs,
// per original_source/core/units/cache/policies/random.rs.
type Random struct {
	ways int
	rng  *rand.Rand
}

func NewRandom(ways int, seed int64) *Random {
	return &Random{ways: ways, rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Update(set, way int) {}

func (r *Random) Victim(set int) int {
	return r.rng.Intn(r.ways)
}

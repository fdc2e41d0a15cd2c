// Package picker chooses a lunch destination while avoiding recent repeats.
package picker

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/lunchybot/lunchy/internal/storage"
)

// ErrEmptyRoster is returned when there is nothing to pick from. The caller
// skips the announcement; the next scheduled firing is the retry boundary.
var ErrEmptyRoster = errors.New("restaurant roster is empty")

// reductionDivisor keeps the oldest third of visited restaurants eligible.
const reductionDivisor = 3

// Picker selects restaurants under the recency policy: never-visited first,
// then the longest-idle third of the visited.
type Picker struct {
	rng *rand.Rand
}

// New creates a picker with a time-seeded random source.
func New() *Picker {
	return NewWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand creates a picker with a caller-supplied random source, used by
// tests for determinism.
func NewWithRand(rng *rand.Rand) *Picker {
	return &Picker{rng: rng}
}

// Eligible computes the pool Pick chooses from. Pure: it never mutates its
// input and touches no external state.
//
// Unvisited restaurants, if any, form the whole pool. Otherwise the visited
// are sorted oldest-first and cut to floor(n/3); with fewer than three visited
// that cut is empty, so the single oldest stays eligible rather than leaving
// nothing to pick.
func Eligible(restaurants []storage.Restaurant) []storage.Restaurant {
	var unvisited, visited []storage.Restaurant
	for _, r := range restaurants {
		if r.Visited() {
			visited = append(visited, r)
		} else {
			unvisited = append(unvisited, r)
		}
	}

	if len(unvisited) > 0 {
		return unvisited
	}
	if len(visited) == 0 {
		return nil
	}

	sort.SliceStable(visited, func(i, j int) bool {
		return visited[i].LastVisited.Before(*visited[j].LastVisited)
	})

	keep := len(visited) / reductionDivisor
	if keep == 0 {
		keep = 1
	}

	return visited[:keep]
}

// Pick chooses uniformly at random from the eligible pool.
func (p *Picker) Pick(restaurants []storage.Restaurant) (storage.Restaurant, error) {
	pool := Eligible(restaurants)
	if len(pool) == 0 {
		return storage.Restaurant{}, ErrEmptyRoster
	}

	return pool[p.rng.Intn(len(pool))], nil
}

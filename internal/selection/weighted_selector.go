package selection

import (
	"math"
	"math/rand"
	"sync/atomic"
)

// MaxAttemptsFactor bounds weighted draws to MaxAttemptsFactor*min(count, pool size).
const MaxAttemptsFactor = 10

// WeightedSelector handles weighted random selection of questions.
// It holds no sampling state between calls: every call gets its own
// random source and works on a private copy of the candidates.
type WeightedSelector struct {
	newRand func() *rand.Rand
}

// NewWeightedSelector creates a new weighted selector
func NewWeightedSelector() *WeightedSelector {
	return &WeightedSelector{
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(rand.Int63()))
		},
	}
}

// NewSeededWeightedSelector creates a selector whose n-th call is seeded
// with seed+n, so a sequence of calls is reproducible.
func NewSeededWeightedSelector(seed int64) *WeightedSelector {
	var calls atomic.Int64
	return &WeightedSelector{
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(seed + calls.Add(1) - 1))
		},
	}
}

// Select draws min(count, len(candidates)) distinct candidates, favouring
// higher weights. Picks are removed from the pool as soon as they are
// chosen. If the attempt guard trips or the weights starve, the rest is
// filled uniformly from what is left. The returned order is shuffled.
// The second return value is how many picks came from that fill.
func (s *WeightedSelector) Select(candidates []WeightedQuestion, count int) ([]WeightedQuestion, int, error) {
	if count <= 0 {
		return []WeightedQuestion{}, 0, nil
	}
	if len(candidates) == 0 {
		return nil, 0, ErrNoQuestionsAvailable
	}

	rng := s.newRand()
	target := min(count, len(candidates))

	remaining := make([]WeightedQuestion, len(candidates))
	copy(remaining, candidates)
	selected := make([]WeightedQuestion, 0, target)

	maxAttempts := MaxAttemptsFactor * target
	for attempts := 0; len(selected) < target && len(remaining) > 0 && attempts < maxAttempts; attempts++ {
		total := totalWeight(remaining)
		if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
			break
		}

		r := rng.Float64() * total
		idx := pickIndex(remaining, r)
		if idx < 0 {
			break
		}
		selected = append(selected, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}

	backfilled := 0
	if need := target - len(selected); need > 0 {
		rng.Shuffle(len(remaining), func(i, j int) {
			remaining[i], remaining[j] = remaining[j], remaining[i]
		})
		selected = append(selected, remaining[:need]...)
		backfilled = need
	}

	rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	return selected, backfilled, nil
}

// pickIndex walks the pool until the running sum exceeds r. When rounding
// leaves r at or beyond the final sum, the last usable candidate is taken.
// It returns -1 only when no candidate has a usable weight.
func pickIndex(pool []WeightedQuestion, r float64) int {
	cumulative := 0.0
	last := -1
	for idx, wq := range pool {
		if !usableWeight(wq.Weight) {
			continue
		}
		last = idx
		cumulative += wq.Weight
		if cumulative > r {
			return idx
		}
	}
	return last
}

func totalWeight(pool []WeightedQuestion) float64 {
	total := 0.0
	for _, wq := range pool {
		if usableWeight(wq.Weight) {
			total += wq.Weight
		}
	}
	return total
}

func usableWeight(w float64) bool {
	return w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}

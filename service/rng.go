package service

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"arcade/models"
)

// Rand is the random source consumed by the outcome generators.
// *rand.Rand satisfies it, so tests can pass a seeded source.
type Rand interface {
	Intn(n int) int
	Int63n(n int64) int64
}

// lockedRand serializes access to a rand.Rand so services can share one
// source across concurrent requests
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand() *lockedRand {
	return &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Int63n(n int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Int63n(n)
}

// DrawLootboxReward picks one reward from a weighted table. Weights are
// integers, so the cumulative comparison is exact; the fallback to the last
// entry is kept as an explicit policy rather than a floating point workaround.
func DrawLootboxReward(rng Rand, rewards []*models.LootboxReward) *models.LootboxReward {
	if len(rewards) == 0 {
		return nil
	}

	var totalWeight int64
	for _, reward := range rewards {
		totalWeight += reward.Weight
	}

	roll := rng.Int63n(totalWeight)

	var cumulative int64
	for _, reward := range rewards {
		cumulative += reward.Weight
		if roll < cumulative {
			return reward
		}
	}

	// Unreachable with positive integer weights; documented fallback
	return rewards[len(rewards)-1]
}

// PlinkoPath simulates rows independent left/right bounces and returns the
// landing slot index in [0, slotCount-1]. The ball starts centered and
// shifts half a slot per row.
func PlinkoPath(rng Rand, rows, slotCount int) int {
	position := float64(rows) / 2

	for i := 0; i < rows; i++ {
		if rng.Intn(2) == 0 {
			position -= 0.5
		} else {
			position += 0.5
		}
	}

	slot := int(math.Floor(position))
	if slot < 0 {
		slot = 0
	}
	if slot >= slotCount {
		slot = slotCount - 1
	}
	return slot
}

// AdjustMultiplier applies the risk-level scaling to a raw slot multiplier:
// low dampens big multipliers, high amplifies them, medium is unscaled.
func AdjustMultiplier(multiplier float64, risk models.RiskLevel) float64 {
	switch risk {
	case models.RiskLevelLow:
		if multiplier > 10 {
			return multiplier * 0.7
		}
	case models.RiskLevelHigh:
		if multiplier > 5 {
			return multiplier * 1.3
		}
	}
	return multiplier
}

// DrawTicket returns a uniform random ticket number in [1, totalSold]
func DrawTicket(rng Rand, totalSold int64) int64 {
	return rng.Int63n(totalSold) + 1
}

package service

import (
	"testing"

	"arcade/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRand feeds scripted values to the outcome generators
type fakeRand struct {
	intns  []int
	int63s []int64
}

func (f *fakeRand) Intn(n int) int {
	if len(f.intns) == 0 {
		panic("fakeRand: no Intn values left")
	}
	v := f.intns[0]
	f.intns = f.intns[1:]
	return v % n
}

func (f *fakeRand) Int63n(n int64) int64 {
	if len(f.int63s) == 0 {
		panic("fakeRand: no Int63n values left")
	}
	v := f.int63s[0]
	f.int63s = f.int63s[1:]
	return v % n
}

func TestDrawLootboxReward_WeightedSelection(t *testing.T) {
	rewards := []*models.LootboxReward{
		{ID: 1, Kind: models.RewardKindPoints, PointsAmount: 10, Weight: 50},
		{ID: 2, Kind: models.RewardKindPoints, PointsAmount: 100, Weight: 30},
		{ID: 3, Kind: models.RewardKindPoints, PointsAmount: 1000, Weight: 20},
	}

	tests := []struct {
		name     string
		roll     int64
		expected int64
	}{
		{"first reward at roll 0", 0, 1},
		{"first reward at upper edge", 49, 1},
		{"second reward at lower edge", 50, 2},
		{"second reward at upper edge", 79, 2},
		{"third reward at lower edge", 80, 3},
		{"third reward at upper edge", 99, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := &fakeRand{int63s: []int64{tt.roll}}
			reward := DrawLootboxReward(rng, rewards)
			require.NotNil(t, reward)
			assert.Equal(t, tt.expected, reward.ID)
		})
	}
}

func TestDrawLootboxReward_EmptyTable(t *testing.T) {
	assert.Nil(t, DrawLootboxReward(&fakeRand{}, nil))
}

func TestPlinkoPath_AllLeftLandsInFirstSlot(t *testing.T) {
	rng := &fakeRand{intns: []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}}
	assert.Equal(t, 0, PlinkoPath(rng, 10, 11))
}

func TestPlinkoPath_AllRightLandsInLastSlot(t *testing.T) {
	rng := &fakeRand{intns: []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}}
	assert.Equal(t, 10, PlinkoPath(rng, 10, 11))
}

func TestPlinkoPath_BalancedBouncesLandInMiddle(t *testing.T) {
	rng := &fakeRand{intns: []int{0, 1, 0, 1, 0, 1, 0, 1, 0, 1}}
	assert.Equal(t, 5, PlinkoPath(rng, 10, 11))
}

func TestAdjustMultiplier(t *testing.T) {
	tests := []struct {
		name       string
		multiplier float64
		risk       models.RiskLevel
		expected   float64
	}{
		{"low risk dampens big multiplier", 16, models.RiskLevelLow, 16 * 0.7},
		{"low risk leaves small multiplier", 2, models.RiskLevelLow, 2},
		{"medium risk never scales", 16, models.RiskLevelMedium, 16},
		{"high risk amplifies big multiplier", 16, models.RiskLevelHigh, 16 * 1.3},
		{"high risk amplifies sixes", 6, models.RiskLevelHigh, 6 * 1.3},
		{"high risk leaves small multiplier", 2, models.RiskLevelHigh, 2},
		{"zero multiplier is never scaled", 0, models.RiskLevelHigh, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, AdjustMultiplier(tt.multiplier, tt.risk), 1e-9)
		})
	}
}

func TestDrawTicket_RangeIsOneBased(t *testing.T) {
	// A raw draw of 0 is ticket 1, a raw draw of n-1 is ticket n
	assert.Equal(t, int64(1), DrawTicket(&fakeRand{int63s: []int64{0}}, 20))
	assert.Equal(t, int64(20), DrawTicket(&fakeRand{int63s: []int64{19}}, 20))
	assert.Equal(t, int64(15), DrawTicket(&fakeRand{int63s: []int64{14}}, 20))
}

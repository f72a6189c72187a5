package duelcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDistributionExactSplit(t *testing.T) {
	d := ComputeDistribution(20)
	assert.Equal(t, 8, d.EasyCount)
	assert.Equal(t, 6, d.MediumCount)
	assert.Equal(t, 6, d.HardCount)
}

func TestComputeDistributionSumsToN(t *testing.T) {
	for n := 0; n <= 200; n++ {
		d := ComputeDistribution(n)
		assert.Equal(t, n, d.Total(), "n=%d", n)
	}
}

func TestComputeDistributionRemainderOrder(t *testing.T) {
	tests := []struct {
		n                  int
		easy, medium, hard int
	}{
		{0, 0, 0, 0},
		{1, 1, 0, 0},
		{2, 1, 1, 0},
		{3, 2, 1, 0},
		{7, 3, 2, 2},
		{9, 4, 3, 2},
		{10, 4, 3, 3},
		{13, 6, 4, 3},
	}
	for _, tt := range tests {
		d := ComputeDistribution(tt.n)
		assert.Equal(t, tt.easy, d.EasyCount, "n=%d easy", tt.n)
		assert.Equal(t, tt.medium, d.MediumCount, "n=%d medium", tt.n)
		assert.Equal(t, tt.hard, d.HardCount, "n=%d hard", tt.n)
	}
}

func TestLevelForCoversEveryIndex(t *testing.T) {
	for _, n := range []int{1, 5, 10, 20, 33} {
		d := ComputeDistribution(n)
		counts := map[Level]int{}
		for i := 0; i < n; i++ {
			counts[d.LevelFor(i)]++
		}
		assert.Equal(t, d.EasyCount, counts[LevelEasy], "n=%d", n)
		assert.Equal(t, d.MediumCount, counts[LevelMedium], "n=%d", n)
		assert.Equal(t, d.HardCount, counts[LevelHard], "n=%d", n)
	}
}

func TestLevelPointsAndWrongCounts(t *testing.T) {
	assert.Equal(t, 1.0, LevelEasy.Points())
	assert.Equal(t, 1.5, LevelMedium.Points())
	assert.Equal(t, 2.0, LevelHard.Points())

	assert.Equal(t, 3, LevelEasy.WrongAnswerCount())
	assert.Equal(t, 4, LevelMedium.WrongAnswerCount())
	assert.Equal(t, 4, LevelHard.WrongAnswerCount())
}

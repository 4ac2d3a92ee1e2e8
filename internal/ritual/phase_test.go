package ritual

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivePhase_DeepCharge(t *testing.T) {
	phases := DeepCharge().Phases
	assert.Equal(t, 300, Total(phases))

	tests := []struct {
		elapsed       int
		wantIndex     int
		wantRemaining int
	}{
		{0, 0, 30},
		{29, 0, 1},
		{30, 1, 60},
		{31, 1, 59},
		{91, 2, 89},
		{181, 3, 29},
		{211, 4, 89},
		{299, 4, 1},
		{300, 4, 0},
		{1000, 4, 0},
		{-5, 0, 30},
	}
	for _, tt := range tests {
		idx, rem := ActivePhase(phases, tt.elapsed)
		assert.Equal(t, tt.wantIndex, idx, "elapsed %d", tt.elapsed)
		assert.Equal(t, tt.wantRemaining, rem, "elapsed %d", tt.elapsed)
	}
}

func TestActivePhase_Empty(t *testing.T) {
	idx, rem := ActivePhase(nil, 3)
	assert.Equal(t, -1, idx)
	assert.Equal(t, 0, rem)
}

func TestPromptAt(t *testing.T) {
	prompts := []Prompt{{0, "a"}, {10, "b"}, {20, "c"}}
	assert.Equal(t, "a", PromptAt(prompts, 0))
	assert.Equal(t, "a", PromptAt(prompts, 9))
	assert.Equal(t, "b", PromptAt(prompts, 10))
	assert.Equal(t, "c", PromptAt(prompts, 25))
	assert.Equal(t, "", PromptAt([]Prompt{{5, "late"}}, 2))
}

func TestIntensityFor(t *testing.T) {
	assert.Equal(t, FeedbackLight, IntensityFor(25))
	assert.Equal(t, FeedbackLight, IntensityFor(11))
	assert.Equal(t, FeedbackMedium, IntensityFor(10))
	assert.Equal(t, FeedbackMedium, IntensityFor(6))
	assert.Equal(t, FeedbackHeavy, IntensityFor(5))
	assert.Equal(t, FeedbackHeavy, IntensityFor(1))
}

func TestPresets(t *testing.T) {
	assert.Equal(t, 30, QuickCharge().Total())
	assert.Equal(t, 5, QuickCharge().HapticInterval)
	assert.Equal(t, 300, DeepCharge().Total())
	assert.Equal(t, 10, Activation().Total())
}

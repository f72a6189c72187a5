package duelcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestion() Question {
	return Question{
		Prompt: "serendipity",
		Answer: "fortunate discovery",
		Distractors: []string{
			"deliberate search", "calm acceptance", "sudden anger",
			"quiet refusal", "shared secret", "false memory",
		},
	}
}

func TestBuildAnswerSetDeterminism(t *testing.T) {
	q := sampleQuestion()
	for idx := 0; idx < 30; idx++ {
		for _, level := range []Level{LevelEasy, LevelMedium, LevelHard} {
			a := BuildAnswerSet(q, idx, level)
			b := BuildAnswerSet(q, idx, level)
			assert.Equal(t, a.Options, b.Options, "idx=%d level=%s", idx, level)
			assert.Equal(t, a.NoneIsCorrect, b.NoneIsCorrect, "idx=%d level=%s", idx, level)
		}
	}
}

func TestBuildAnswerSetEasyShape(t *testing.T) {
	set := BuildAnswerSet(sampleQuestion(), 0, LevelEasy)

	require.Len(t, set.Options, 4)
	assert.False(t, set.NoneIsCorrect)
	assert.Contains(t, set.Options, "fortunate discovery")
	assert.NotContains(t, set.Options, NoneOption)
	assert.Equal(t, "fortunate discovery", set.CorrectOption(sampleQuestion()))
}

func TestBuildAnswerSetMediumShape(t *testing.T) {
	set := BuildAnswerSet(sampleQuestion(), 0, LevelMedium)

	require.Len(t, set.Options, 5)
	assert.Contains(t, set.Options, "fortunate discovery")
	assert.NotContains(t, set.Options, NoneOption)
}

func TestBuildAnswerSetHardShape(t *testing.T) {
	q := sampleQuestion()
	sawNoneCorrect := false
	sawAnswerPresent := false

	for idx := 0; idx < 50; idx++ {
		set := BuildAnswerSet(q, idx, LevelHard)
		assert.Contains(t, set.Options, NoneOption, "hard sets always carry the sentinel")

		if set.NoneIsCorrect {
			sawNoneCorrect = true
			assert.NotContains(t, set.Options, q.Answer, "hidden answer must be omitted")
			assert.Len(t, set.Options, 5)
			assert.Equal(t, NoneOption, set.CorrectOption(q))
		} else {
			sawAnswerPresent = true
			assert.Contains(t, set.Options, q.Answer)
			assert.Len(t, set.Options, 5)
			assert.Equal(t, q.Answer, set.CorrectOption(q))
		}
	}

	// The none-is-correct draw sits at 0.5; across 50 seeds both branches show up.
	assert.True(t, sawNoneCorrect, "expected at least one hidden-answer set")
	assert.True(t, sawAnswerPresent, "expected at least one trap set")
}

func TestBuildAnswerSetShortPool(t *testing.T) {
	q := Question{
		Prompt:      "brief",
		Answer:      "short",
		Distractors: []string{"long", "tall"},
	}

	set := BuildAnswerSet(q, 2, LevelMedium)
	require.Len(t, set.Options, 3, "takes all available, never fabricates")
	assert.Contains(t, set.Options, "short")
	assert.Contains(t, set.Options, "long")
	assert.Contains(t, set.Options, "tall")
}

func TestBuildAnswerSetNoDuplicates(t *testing.T) {
	q := sampleQuestion()
	for idx := 0; idx < 30; idx++ {
		set := BuildAnswerSet(q, idx, LevelHard)
		seen := map[string]bool{}
		for _, opt := range set.Options {
			assert.False(t, seen[opt], "duplicate option %q at idx %d", opt, idx)
			seen[opt] = true
		}
	}
}

func TestBuildAnswerSetDoesNotMutateInput(t *testing.T) {
	q := sampleQuestion()
	before := append([]string(nil), q.Distractors...)
	BuildAnswerSet(q, 0, LevelHard)
	assert.Equal(t, before, q.Distractors)
}

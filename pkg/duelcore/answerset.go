package duelcore

// NoneOption is the sentinel candidate shown on hard questions. It may itself
// be the correct choice, in which case the true answer is omitted entirely.
const NoneOption = "NONE_OF_THE_ABOVE"

// Question is one entry of a theme's ordered word list.
type Question struct {
	Prompt      string   `json:"prompt"`
	Answer      string   `json:"answer"`
	Distractors []string `json:"distractors"`
}

// AnswerSet is the shuffled candidate list presented for one question.
type AnswerSet struct {
	Options       []string
	NoneIsCorrect bool
}

// CorrectOption returns the option that scores for this set.
func (s AnswerSet) CorrectOption(q Question) string {
	if s.NoneIsCorrect {
		return NoneOption
	}
	return q.Answer
}

// BuildAnswerSet derives the candidate list for a question at the given index
// and difficulty. All randomness comes from the question's deterministic draw
// stream, so every caller produces the identical list byte for byte.
//
// Draw order is part of the contract: pool shuffle first, then (hard only) the
// none-is-correct draw, then the candidate shuffle.
func BuildAnswerSet(q Question, questionIndex int, level Level) AnswerSet {
	stream := NewStream(q.Prompt, questionIndex)

	pool := make([]string, len(q.Distractors))
	copy(pool, q.Distractors)
	shuffle(pool, stream)

	wrongCount := level.WrongAnswerCount()
	if wrongCount > len(pool) {
		// Short pool: take what exists, never fabricate options.
		wrongCount = len(pool)
	}
	wrong := pool[:wrongCount]

	var options []string
	noneIsCorrect := false

	if level == LevelHard {
		if stream.Next() < 0.5 {
			noneIsCorrect = true
			options = append(options, wrong...)
			options = append(options, NoneOption)
		} else {
			kept := wrong
			if len(kept) > 3 {
				kept = kept[:3]
			}
			options = append(options, q.Answer)
			options = append(options, kept...)
			options = append(options, NoneOption)
		}
	} else {
		options = append(options, q.Answer)
		options = append(options, wrong...)
	}

	shuffle(options, stream)
	return AnswerSet{Options: options, NoneIsCorrect: noneIsCorrect}
}

// shuffle is a Fisher-Yates pass fed by stream draws.
func shuffle(items []string, stream *Stream) {
	for i := len(items) - 1; i > 0; i-- {
		j := int(stream.Next() * float64(i+1))
		items[i], items[j] = items[j], items[i]
	}
}

package duelcore

import "fmt"

// Snapshot is the slice of replicated match state a client needs to render the
// current question locally.
type Snapshot struct {
	WordOrder        []int
	CurrentWordIndex int
}

// Predictor recomputes the server's answer set from a match snapshot so the
// client can render options before the round trip completes. It is strictly a
// read derivation and never mutates anything.
type Predictor struct {
	words []Question
}

// NewPredictor wraps a theme's ordered word list.
func NewPredictor(words []Question) *Predictor {
	return &Predictor{words: words}
}

// CurrentQuestion resolves the question under the snapshot's cursor.
func (p *Predictor) CurrentQuestion(snap Snapshot) (Question, error) {
	if snap.CurrentWordIndex < 0 || snap.CurrentWordIndex >= len(snap.WordOrder) {
		return Question{}, fmt.Errorf("no current question at index %d", snap.CurrentWordIndex)
	}
	wordIdx := snap.WordOrder[snap.CurrentWordIndex]
	if wordIdx < 0 || wordIdx >= len(p.words) {
		return Question{}, fmt.Errorf("word order entry %d out of range", wordIdx)
	}
	return p.words[wordIdx], nil
}

// CurrentAnswerSet independently reruns the distribution calculator and the
// answer set builder for the snapshot's cursor. For identical inputs it must
// converge to the server's authoritative set; divergence means one side's
// arithmetic was changed.
func (p *Predictor) CurrentAnswerSet(snap Snapshot) (AnswerSet, error) {
	q, err := p.CurrentQuestion(snap)
	if err != nil {
		return AnswerSet{}, err
	}
	dist := ComputeDistribution(len(snap.WordOrder))
	level := dist.LevelFor(snap.CurrentWordIndex)
	return BuildAnswerSet(q, snap.CurrentWordIndex, level), nil
}

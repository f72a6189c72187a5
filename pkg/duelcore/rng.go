package duelcore

// Linear-congruential constants (glibc variant). The recurrence must never
// change: both the server validator and any client predictor replay it to
// arrive at the same permutation without exchanging it over the wire.
const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgModulus    = 1 << 31
)

// Stream is a deterministic sequence of pseudo-random draws keyed by a
// question. Two streams built from the same prompt and index yield identical
// draws for the same number of calls.
type Stream struct {
	state int64
}

// NewStream derives the per-question seed from the prompt text and the
// question's position in the match sequence.
func NewStream(prompt string, questionIndex int) *Stream {
	var seed int64
	for i, r := range []rune(prompt) {
		seed += int64(r) * int64(i+1)
	}
	seed += int64(questionIndex) * 7919
	return &Stream{state: seed}
}

// Next advances the stream and returns a draw in [0, 1).
func (s *Stream) Next() float64 {
	s.state = (s.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(s.state) / float64(lcgModulus)
}

package duelcore

// Level is a difficulty bucket assigned to a contiguous index range.
type Level string

const (
	LevelEasy   Level = "easy"
	LevelMedium Level = "medium"
	LevelHard   Level = "hard"
)

// HintBonus is awarded to the hint provider when the assisted player answers
// correctly after at least one elimination.
const HintBonus = 0.5

// Distribution partitions question indices [0, n) into difficulty buckets
// targeting a 40/30/30 split.
type Distribution struct {
	EasyCount   int
	MediumCount int
	HardCount   int
}

// ComputeDistribution returns bucket sizes for n questions. Floors of the
// target split first, then the remainder handed out round-robin starting with
// easy. Bucket sizes always sum exactly to n.
func ComputeDistribution(n int) Distribution {
	if n <= 0 {
		return Distribution{}
	}

	buckets := [3]int{n * 4 / 10, n * 3 / 10, n * 3 / 10}
	leftover := n - buckets[0] - buckets[1] - buckets[2]
	for i := 0; leftover > 0; i++ {
		buckets[i%3]++
		leftover--
	}

	return Distribution{
		EasyCount:   buckets[0],
		MediumCount: buckets[1],
		HardCount:   buckets[2],
	}
}

// Total returns the question count covered by the distribution.
func (d Distribution) Total() int {
	return d.EasyCount + d.MediumCount + d.HardCount
}

// LevelFor maps a question index to its difficulty bucket. The same mapping
// runs on the client predictor and in answer validation; they must agree.
func (d Distribution) LevelFor(index int) Level {
	switch {
	case index < d.EasyCount:
		return LevelEasy
	case index < d.EasyCount+d.MediumCount:
		return LevelMedium
	default:
		return LevelHard
	}
}

// Points returns the score awarded for a correct answer at this level.
func (l Level) Points() float64 {
	switch l {
	case LevelEasy:
		return 1
	case LevelMedium:
		return 1.5
	default:
		return 2
	}
}

// WrongAnswerCount returns how many distractors a question at this level
// presents. Hard questions additionally carry the "none of the above" slot.
func (l Level) WrongAnswerCount() int {
	if l == LevelEasy {
		return 3
	}
	return 4
}

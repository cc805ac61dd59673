// Package grading scores exam submissions against a course's answer key.
//
// A question counts as correct only when the choices selected for it are exactly
// its correct choices; there is no partial credit.
package grading

import "math"

type Scoring string

const (
	// Weighted scores by the sum of question grades earned over the sum of all grades.
	Weighted Scoring = "weighted"
	// Unweighted scores by the number of correct questions over the number of questions.
	Unweighted Scoring = "unweighted"
)

// EmptyKey decides how a question without any correct choice is graded.
type EmptyKey string

const (
	// Unsatisfiable questions can never be answered correctly.
	Unsatisfiable EmptyKey = "unsatisfiable"
	// Vacuous questions are correct when nothing was selected for them.
	Vacuous EmptyKey = "vacuous"
)

type Policy struct {
	Scoring        Scoring
	PassPercentage float64
	EmptyKey       EmptyKey
}

func DefaultPolicy() Policy {
	return Policy{Scoring: Weighted, PassPercentage: 50, EmptyKey: Unsatisfiable}
}

// QuestionKey is the answer key of one question.
type QuestionKey struct {
	QuestionID uint
	Grade      int
	ChoiceIDs  []uint
	CorrectIDs []uint
}

type QuestionResult struct {
	QuestionID uint   `json:"questionId"`
	Grade      int    `json:"grade"`
	Earned     int    `json:"earned"`
	Selected   []uint `json:"selected"`
	Correct    []uint `json:"correct"`
	IsCorrect  bool   `json:"isCorrect"`
}

type Result struct {
	Questions     []QuestionResult `json:"questions"`
	Score         int              `json:"score"`
	MaxScore      int              `json:"maxScore"`
	CorrectCount  int              `json:"correctCount"`
	QuestionCount int              `json:"questionCount"`
	Percentage    float64          `json:"percentage"`
	Passed        bool             `json:"passed"`
}

type idSet map[uint]struct{}

func newIDSet(ids []uint) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s idSet) equal(o idSet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if _, ok := o[id]; !ok {
			return false
		}
	}
	return true
}

// IsCorrect reports whether selected exactly matches correct under the empty key policy.
func IsCorrect(selected, correct []uint, emptyKey EmptyKey) bool {
	if len(correct) == 0 && emptyKey != Vacuous {
		return false
	}
	return newIDSet(selected).equal(newIDSet(correct))
}

// Grade scores the selected choice IDs against keys. Selected IDs that belong to
// no question in keys are ignored. Score and MaxScore are grade points in weighted
// mode and question counts in unweighted mode.
func Grade(keys []QuestionKey, selected []uint, p Policy) Result {
	picked := newIDSet(selected)
	res := Result{
		Questions:     make([]QuestionResult, 0, len(keys)),
		QuestionCount: len(keys),
	}

	weightedScore, weightedMax := 0, 0
	for _, k := range keys {
		var mine []uint
		seen := make(idSet)
		for _, id := range k.ChoiceIDs {
			if _, ok := picked[id]; !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			mine = append(mine, id)
		}

		qr := QuestionResult{
			QuestionID: k.QuestionID,
			Grade:      k.Grade,
			Selected:   mine,
			Correct:    k.CorrectIDs,
			IsCorrect:  IsCorrect(mine, k.CorrectIDs, p.EmptyKey),
		}
		weightedMax += k.Grade
		if qr.IsCorrect {
			qr.Earned = k.Grade
			weightedScore += k.Grade
			res.CorrectCount++
		}
		res.Questions = append(res.Questions, qr)
	}

	switch p.Scoring {
	case Unweighted:
		res.Score, res.MaxScore = res.CorrectCount, res.QuestionCount
	default:
		res.Score, res.MaxScore = weightedScore, weightedMax
	}

	if res.MaxScore > 0 {
		res.Percentage = round2(float64(res.Score) / float64(res.MaxScore) * 100)
		res.Passed = res.Percentage >= p.PassPercentage
	}
	return res
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

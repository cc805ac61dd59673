package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleKeys() []QuestionKey {
	return []QuestionKey{
		{QuestionID: 1, Grade: 60, ChoiceIDs: []uint{11, 12, 13}, CorrectIDs: []uint{11}},
		{QuestionID: 2, Grade: 40, ChoiceIDs: []uint{21, 22, 23}, CorrectIDs: []uint{21, 23}},
	}
}

func TestIsCorrect(t *testing.T) {
	tests := []struct {
		name     string
		selected []uint
		correct  []uint
		emptyKey EmptyKey
		want     bool
	}{
		{name: "exact single", selected: []uint{1}, correct: []uint{1}, want: true},
		{name: "exact multi any order", selected: []uint{3, 1}, correct: []uint{1, 3}, want: true},
		{name: "subset is wrong", selected: []uint{1}, correct: []uint{1, 3}},
		{name: "superset is wrong", selected: []uint{1, 2, 3}, correct: []uint{1, 3}},
		{name: "nothing selected", selected: nil, correct: []uint{1}},
		{name: "duplicates collapse", selected: []uint{1, 1}, correct: []uint{1}, want: true},
		{name: "empty key unsatisfiable", selected: nil, correct: nil, emptyKey: Unsatisfiable},
		{name: "empty key vacuous", selected: nil, correct: nil, emptyKey: Vacuous, want: true},
		{name: "empty key vacuous with selection", selected: []uint{4}, correct: nil, emptyKey: Vacuous},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCorrect(tt.selected, tt.correct, tt.emptyKey))
		})
	}
}

func TestGradeWeighted(t *testing.T) {
	tests := []struct {
		name       string
		selected   []uint
		wantScore  int
		wantPct    float64
		wantPassed bool
	}{
		{name: "all correct", selected: []uint{11, 21, 23}, wantScore: 100, wantPct: 100, wantPassed: true},
		{name: "heavy question only", selected: []uint{11, 21}, wantScore: 60, wantPct: 60, wantPassed: true},
		{name: "light question only", selected: []uint{12, 21, 23}, wantScore: 40, wantPct: 40},
		{name: "nothing", selected: nil, wantScore: 0, wantPct: 0},
		{name: "foreign choices ignored", selected: []uint{11, 999}, wantScore: 60, wantPct: 60, wantPassed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Grade(sampleKeys(), tt.selected, DefaultPolicy())
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, 100, res.MaxScore)
			assert.Equal(t, tt.wantPct, res.Percentage)
			assert.Equal(t, tt.wantPassed, res.Passed)
			assert.Len(t, res.Questions, 2)
		})
	}
}

func TestGradeUnweighted(t *testing.T) {
	p := Policy{Scoring: Unweighted, PassPercentage: 50, EmptyKey: Unsatisfiable}

	res := Grade(sampleKeys(), []uint{12, 21, 23}, p)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 2, res.MaxScore)
	assert.Equal(t, 50.0, res.Percentage)
	assert.True(t, res.Passed)
	assert.Equal(t, 1, res.CorrectCount)
}

func TestGradeRoundsToTwoDecimals(t *testing.T) {
	keys := []QuestionKey{
		{QuestionID: 1, Grade: 1, ChoiceIDs: []uint{1}, CorrectIDs: []uint{1}},
		{QuestionID: 2, Grade: 1, ChoiceIDs: []uint{2}, CorrectIDs: []uint{2}},
		{QuestionID: 3, Grade: 1, ChoiceIDs: []uint{3}, CorrectIDs: []uint{3}},
	}
	res := Grade(keys, []uint{1}, DefaultPolicy())
	assert.Equal(t, 33.33, res.Percentage)
	assert.False(t, res.Passed)
}

func TestGradeNoQuestions(t *testing.T) {
	res := Grade(nil, []uint{1, 2}, DefaultPolicy())
	assert.Equal(t, 0, res.MaxScore)
	assert.Equal(t, 0.0, res.Percentage)
	assert.False(t, res.Passed)
}

func TestGradeEmptyKeyPolicies(t *testing.T) {
	keys := []QuestionKey{
		{QuestionID: 1, Grade: 10, ChoiceIDs: []uint{1, 2}, CorrectIDs: []uint{1}},
		{QuestionID: 2, Grade: 10, ChoiceIDs: []uint{3, 4}},
	}

	strict := Grade(keys, []uint{1}, DefaultPolicy())
	assert.Equal(t, 10, strict.Score)
	assert.False(t, strict.Questions[1].IsCorrect)

	lenient := Grade(keys, []uint{1}, Policy{Scoring: Weighted, PassPercentage: 50, EmptyKey: Vacuous})
	assert.Equal(t, 20, lenient.Score)
	assert.True(t, lenient.Questions[1].IsCorrect)
}

func TestGradePercentageMonotonic(t *testing.T) {
	keys := []QuestionKey{
		{QuestionID: 1, Grade: 5, ChoiceIDs: []uint{1, 2}, CorrectIDs: []uint{1}},
		{QuestionID: 2, Grade: 30, ChoiceIDs: []uint{3, 4}, CorrectIDs: []uint{3}},
		{QuestionID: 3, Grade: 15, ChoiceIDs: []uint{5, 6}, CorrectIDs: []uint{6}},
		{QuestionID: 4, Grade: 50, ChoiceIDs: []uint{7, 8}, CorrectIDs: []uint{7, 8}},
	}
	correctAnswers := [][]uint{{1}, {3}, {6}, {7, 8}}

	for _, scoring := range []Scoring{Weighted, Unweighted} {
		t.Run(string(scoring), func(t *testing.T) {
			p := Policy{Scoring: scoring, PassPercentage: 50, EmptyKey: Unsatisfiable}
			var selected []uint
			prev := Grade(keys, selected, p).Percentage
			for i, ans := range correctAnswers {
				selected = append(selected, ans...)
				cur := Grade(keys, selected, p)
				assert.Equal(t, i+1, cur.CorrectCount)
				assert.GreaterOrEqual(t, cur.Percentage, prev)
				prev = cur.Percentage
			}
			assert.Equal(t, 100.0, prev)
		})
	}
}

package phonics

import (
	"fmt"
	"strings"
)

// DiffKind classifies a positional difference between two spellings
type DiffKind string

const (
	Substitution DiffKind = "substitution"
	Missing      DiffKind = "missing"
	Extra        DiffKind = "extra"
)

// Hint texts that do not come from the rule table
const (
	HintSoundItOut    = "Try sounding out each letter carefully."
	HintEIException   = `"I before E except after C" - but this word is an exception!`
	HintIEReminder    = `Remember: "I before E except after C"`
	HintEncouragement = "You're very close! Try again!"
)

// closeEnough is the largest diff count that still earns encouragement
const closeEnough = 2

// Diff is one position where the attempt and the expected word disagree.
// Position is zero based; Expected or Actual is empty when the letter is
// missing or extra.
type Diff struct {
	Position int      `json:"position"`
	Expected string   `json:"expected,omitempty"`
	Actual   string   `json:"actual,omitempty"`
	Kind     DiffKind `json:"kind"`
}

// String renders the diff for a child, counting positions from one
func (d Diff) String() string {
	switch d.Kind {
	case Missing:
		return fmt.Sprintf("Missing letter %q at position %d", d.Expected, d.Position+1)
	case Extra:
		return fmt.Sprintf("Extra letter %q at position %d", d.Actual, d.Position+1)
	default:
		return fmt.Sprintf("Position %d: expected %q, got %q", d.Position+1, d.Expected, d.Actual)
	}
}

// Diagnosis is the structured result of analyzing one attempt
type Diagnosis struct {
	Correct bool     `json:"correct"`
	Diffs   []Diff   `json:"diffs"`
	Hints   []string `json:"hints"`
}

// Hint returns the phonics hint, or "" for a correct attempt
func (d Diagnosis) Hint() string {
	if len(d.Hints) == 0 {
		return ""
	}
	return d.Hints[0]
}

// Analyze compares an attempt with the expected spelling. Comparison is
// case-insensitive and strictly positional.
func Analyze(expected, actual string) Diagnosis {
	want := strings.ToLower(expected)
	got := strings.ToLower(actual)

	if want == got {
		return Diagnosis{Correct: true, Diffs: []Diff{}, Hints: []string{}}
	}

	diffs := positionalDiffs([]rune(want), []rune(got))
	hints := []string{phonicsHint(want, got)}
	if len(diffs) <= closeEnough {
		hints = append(hints, HintEncouragement)
	}

	return Diagnosis{Correct: false, Diffs: diffs, Hints: hints}
}

func positionalDiffs(want, got []rune) []Diff {
	n := max(len(want), len(got))
	diffs := make([]Diff, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case i >= len(got):
			diffs = append(diffs, Diff{Position: i, Expected: string(want[i]), Kind: Missing})
		case i >= len(want):
			diffs = append(diffs, Diff{Position: i, Actual: string(got[i]), Kind: Extra})
		case want[i] != got[i]:
			diffs = append(diffs, Diff{Position: i, Expected: string(want[i]), Actual: string(got[i]), Kind: Substitution})
		}
	}
	return diffs
}

// phonicsHint picks the first rule of the expected word that the attempt
// lost. Both arguments are lowercased.
func phonicsHint(want, got string) string {
	rules := FindPatterns(want)
	if len(rules) == 0 {
		return HintSoundItOut
	}

	for _, r := range rules {
		if !r.present(got) {
			return fmt.Sprintf("%s. Examples: %s", r.Explanation, strings.Join(r.Examples[:2], ", "))
		}
	}

	if strings.Contains(want, "ei") && strings.Contains(got, "ie") {
		return HintEIException
	}
	if strings.Contains(want, "ie") && strings.Contains(got, "ei") {
		return HintIEReminder
	}

	return rules[0].Explanation
}

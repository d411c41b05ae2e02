// Package phonics holds the phonics rule table and the spelling attempt
// analyzer built on it. Everything here is pure and safe for concurrent use.
package phonics

import "strings"

// Category groups rules the way lessons introduce them
type Category string

const (
	VowelTeams    Category = "vowel_teams"
	SilentLetters Category = "silent_letters"
	Digraphs      Category = "digraphs"
	RControlled   Category = "r_controlled"
)

// Categories lists every category in lesson order
func Categories() []Category {
	return []Category{VowelTeams, SilentLetters, Digraphs, RControlled}
}

// ParseCategory matches a category name case-insensitively
func ParseCategory(name string) (Category, bool) {
	for _, c := range Categories() {
		if strings.EqualFold(name, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Rule explains one letter pattern
type Rule struct {
	Pattern     string   `json:"pattern"`
	Explanation string   `json:"explanation"`
	Examples    []string `json:"examples"`
	Category    Category `json:"category,omitempty"`
}

// silentEPattern is never a literal substring; the rule is synthesized
// from the shape of the word instead.
const silentEPattern = "_e"

var silentE = Rule{
	Pattern:     silentEPattern,
	Explanation: "The silent E at the end makes the vowel say its name",
	Examples:    []string{"cake", "time", "hope", "cube"},
	Category:    SilentLetters,
}

// table is scanned in declaration order; hints depend on that order.
// "igh" belongs to no category.
var table = []Rule{
	{"ai", `The "ai" team makes the long A sound (like in "rain")`, []string{"rain", "train", "paint", "wait"}, VowelTeams},
	{"ay", `The "ay" team makes the long A sound at the end of words`, []string{"day", "play", "stay", "away"}, VowelTeams},
	{"ea", `The "ea" team usually makes the long E sound`, []string{"eat", "seat", "teach", "beach"}, VowelTeams},
	{"ee", `The "ee" team makes the long E sound`, []string{"bee", "tree", "seed", "feet"}, VowelTeams},
	{"oa", `The "oa" team makes the long O sound`, []string{"boat", "coat", "road", "soap"}, VowelTeams},
	{"ow", `The "ow" team can make the long O sound or the "ow" sound`, []string{"snow", "grow", "cow", "now"}, VowelTeams},
	{"kn", `In "kn" words, the K is silent`, []string{"knee", "know", "knife", "knock"}, SilentLetters},
	{"wr", `In "wr" words, the W is silent`, []string{"write", "wrong", "wrap", "wrench"}, SilentLetters},
	{"mb", `In "mb" at the end, the B is silent`, []string{"climb", "thumb", "lamb", "comb"}, SilentLetters},
	{"gh", `The "gh" is often silent or makes an F sound`, []string{"night", "light", "laugh", "rough"}, SilentLetters},
	{"ch", `The "ch" team makes the /ch/ sound`, []string{"chair", "church", "much", "lunch"}, Digraphs},
	{"sh", `The "sh" team makes the /sh/ sound`, []string{"ship", "fish", "wash", "brush"}, Digraphs},
	{"th", `The "th" team makes the /th/ sound`, []string{"this", "that", "think", "both"}, Digraphs},
	{"ph", `The "ph" team makes the /f/ sound`, []string{"phone", "graph", "photo", "elephant"}, Digraphs},
	{"igh", `The "igh" team makes the long I sound (the GH is silent)`, []string{"night", "light", "right", "bright"}, ""},
	{"oi", `The "oi" team makes the /oy/ sound in the middle of words`, []string{"coin", "point", "join", "oil"}, VowelTeams},
	{"oy", `The "oy" team makes the /oy/ sound at the end of words`, []string{"boy", "toy", "joy", "enjoy"}, VowelTeams},
	{"ou", `The "ou" team can make different sounds`, []string{"out", "house", "you", "soup"}, VowelTeams},
	{"ar", `The "ar" team makes the /ar/ sound like in "car"`, []string{"car", "star", "farm", "park"}, RControlled},
	{"er", `The "er" team makes the /er/ sound`, []string{"her", "verb", "fern", "teacher"}, RControlled},
	{"ir", `The "ir" team makes the /er/ sound`, []string{"bird", "first", "girl", "shirt"}, RControlled},
	{"ur", `The "ur" team makes the /er/ sound`, []string{"burn", "turn", "hurt", "purple"}, RControlled},
	{"or", `The "or" team makes the /or/ sound`, []string{"for", "fork", "storm", "corn"}, RControlled},
}

var index = func() map[string]Rule {
	m := make(map[string]Rule, len(table)+1)
	for _, r := range table {
		m[r.Pattern] = r
	}
	m[silentE.Pattern] = silentE
	return m
}()

// Lookup returns the rule registered for a pattern
func Lookup(pattern string) (Rule, bool) {
	r, ok := index[strings.ToLower(pattern)]
	return r, ok
}

// Rules returns every table rule in declaration order, silent E first.
func Rules() []Rule {
	out := make([]Rule, 0, len(table)+1)
	out = append(out, silentE)
	return append(out, table...)
}

// RulesByCategory returns the rules of one category in declaration order
func RulesByCategory(c Category) []Rule {
	var out []Rule
	for _, r := range Rules() {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out
}

// FindPatterns returns the rules present in word. The synthesized silent E
// rule comes first, then table rules whose pattern occurs literally.
func FindPatterns(word string) []Rule {
	w := strings.ToLower(word)

	var found []Rule
	if hasSilentE(w) {
		found = append(found, silentE)
	}
	for _, r := range table {
		if strings.Contains(w, r.Pattern) {
			found = append(found, r)
		}
	}
	return found
}

// hasSilentE reports a trailing "e" after a consonant in a word of three or
// more letters. w must already be lowercased.
func hasSilentE(w string) bool {
	runes := []rune(w)
	if len(runes) <= 2 || runes[len(runes)-1] != 'e' {
		return false
	}
	return !isVowel(runes[len(runes)-2])
}

func isVowel(r rune) bool {
	return strings.ContainsRune("aeiou", r)
}

// present reports whether the rule's pattern occurs literally in an attempt.
// The silent E pattern never does, so a silent E word always hints at it first.
func (r Rule) present(attempt string) bool {
	return strings.Contains(attempt, r.Pattern)
}

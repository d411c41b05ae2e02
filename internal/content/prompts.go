package content

import (
	"fmt"
	"strings"
)

const (
	spellingSystemPrompt = "You are an expert elementary school teacher specializing in spelling bee preparation. Generate age-appropriate spelling words with educational value."
	storySystemPrompt    = "You are an expert children's author and educator. Create engaging, age-appropriate stories with comprehension questions."

	// WordsPerPack and StoriesPerPack are the sizes requested from the generator
	WordsPerPack   = 20
	StoriesPerPack = 5
)

var phonicsFocus = [][]string{
	{"CVC words (cat, dog)", "short vowels", "consonant blends (st, br, fl)"},
	{"CVCe words (cake, time)", "long vowels with silent e", "digraphs (ch, sh, th)"},
	{"vowel teams (ai, ea, oa)", "r-controlled vowels (ar, er, ir)", "diphthongs (oi, ou)"},
	{"silent letters (kn, wr, mb)", "complex blends (scr, spl)", "suffix patterns (-ing, -ed)"},
	{"vowel combinations (ie, igh, eigh)", "prefix patterns (un-, re-)", "compound words"},
	{"advanced suffixes (-tion, -sion)", "Greek/Latin roots", "homophones"},
	{"multi-syllable words", "schwa sounds", "advanced prefixes (pre-, dis-)"},
	{"irregular spellings", "word families", "advanced vocabulary"},
	{"complex word structures", "etymology-based patterns", "academic vocabulary"},
	{"contest-level words", "rare patterns", "advanced etymology"},
}

var storyThemes = []string{
	"Friendship and cooperation",
	"Overcoming challenges",
	"Honesty and integrity",
	"Curiosity and learning",
	"Kindness and empathy",
}

// difficultyFor maps a level to a 1..10 difficulty
func difficultyFor(level int) int {
	d := (level*7+9)/10 + 2
	if d > 10 {
		return 10
	}
	return d
}

func phonicsFocusFor(level int) string {
	i := level - 1
	if i < 0 {
		i = 0
	}
	if i >= len(phonicsFocus) {
		i = len(phonicsFocus) - 1
	}
	return strings.Join(phonicsFocus[i], ", ")
}

func storyLength(level int) (lo, hi int) {
	switch {
	case level <= 3:
		return 100, 150
	case level <= 7:
		return 200, 300
	default:
		return 300, 500
	}
}

func storyComplexity(level int) string {
	switch {
	case level <= 3:
		return "Simple sentences, clear cause-and-effect, literal comprehension"
	case level <= 7:
		return "Varied sentence structure, some inference required, character motivations"
	default:
		return "Complex narratives, multiple themes, advanced vocabulary, abstract concepts"
	}
}

func questionTypes(level int) string {
	switch {
	case level <= 3:
		return "literal recall, main idea, sequence of events"
	case level <= 7:
		return "inference, character analysis, cause and effect, vocabulary in context"
	default:
		return "theme identification, author's purpose, figurative language, complex inference"
	}
}

// ordinal renders 1 as 1st, 2 as 2nd and so on
func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func spellingPrompt(grade, level int) string {
	difficulty := difficultyFor(level)
	return fmt.Sprintf(`Generate exactly %d spelling words for grade %d, level %d (difficulty: %d).

Requirements:
- Words should be age-appropriate for %s grade
- Include common phonics patterns relevant to this level
- Difficulty range: %d/10
- Each word must include: word, definition, origin, phonics_pattern, difficulty (1-10), example_sentence

Phonics patterns to focus on for level %d:
%s

Return a JSON object with this structure:
{
  "words": [
    {
      "word": "example",
      "definition": "a thing characteristic of its kind",
      "origin": "Latin 'exemplum'",
      "phonics_pattern": "ex-am-ple (short e, short a, silent e)",
      "difficulty": 5,
      "example_sentence": "The teacher gave an example of a compound word."
    }
  ]
}`, WordsPerPack, grade, level, difficulty, ordinal(grade), difficulty, level, phonicsFocusFor(level))
}

func storyPrompt(grade, level int) string {
	lo, hi := storyLength(level)

	var themes strings.Builder
	for i, t := range storyThemes {
		fmt.Fprintf(&themes, "%d. %s\n", i+1, t)
	}

	return fmt.Sprintf(`Generate %d engaging stories for %s grade students, level %d.

Requirements:
- Each story should be %d-%d words
- Complexity: %s
- Include 3-5 comprehension questions per story
- Questions should test: %s
- Stories should have moral lessons and educational value
- Use vocabulary appropriate for %s grade

Story themes to include (one per story):
%s
Return a JSON object with this structure:
{
  "stories": [
    {
      "id": "story_1",
      "title": "The Story Title",
      "text": "Full story text here...",
      "word_count": 150,
      "difficulty_level": "beginner",
      "themes": ["friendship"],
      "questions": [
        {
          "question": "What was the main character's problem?",
          "options": ["Option A", "Option B", "Option C", "Option D"],
          "correct_answer": 0,
          "explanation": "The story clearly states..."
        }
      ]
    }
  ]
}`, StoriesPerPack, ordinal(grade), level, lo, hi, storyComplexity(level), questionTypes(level), ordinal(grade), themes.String())
}

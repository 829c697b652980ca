// Package score turns the transcription service's per-word
// confidences into the session grade shown to the user.
package score

import (
	"math"
	"strings"
	"time"

	"parrot/transcriber"
)

// MispronouncedThreshold is the confidence cutoff below which a word
// counts as mispronounced.
const MispronouncedThreshold = 0.7

// WordScore is the graded form of one recognized word. The JSON field
// names are part of the persisted history layout.
type WordScore struct {
	Word            string `json:"word"`
	Confidence      int    `json:"confidence"`
	IsMispronounced bool   `json:"isMispronounced"`
}

// Result is the outcome of grading one attempt.
type Result struct {
	Score    int
	Feedback string
	Words    []WordScore
	WPM      int
	HasWPM   bool
}

// Grade scores a non-empty confidence list against the practiced
// sentence. The aggregate uses every returned entry, so words the
// service missed don't count and words it invented do. wordCount and
// the timestamps only feed the pace figure.
func Grade(entries []transcriber.WordConfidence, wordCount int, start, end time.Time) Result {
	if len(entries) == 0 {
		return Result{Feedback: Feedback(0)}
	}

	words := make([]WordScore, len(entries))
	var sum float64
	for i, e := range entries {
		sum += e.Confidence
		words[i] = WordScore{
			Word:            strings.ToLower(e.Word),
			Confidence:      int(math.Round(e.Confidence * 100)),
			IsMispronounced: e.Confidence < MispronouncedThreshold,
		}
	}

	aggregate := int(math.Round(sum / float64(len(entries)) * 100))
	r := Result{
		Score:    aggregate,
		Feedback: Feedback(aggregate),
		Words:    words,
	}
	r.WPM, r.HasWPM = WordsPerMinute(wordCount, start, end)
	return r
}

// Feedback maps an aggregate score to its tier message.
func Feedback(score int) string {
	switch {
	case score >= 85:
		return "Excellent pronunciation!"
	case score >= 60:
		return "Good job! Keep practicing to improve."
	default:
		return "Keep practicing for better clarity."
	}
}

// WordsPerMinute derives the reading pace from the sentence length and
// the recording duration. Absent or inverted timestamps yield no pace
// figure rather than a bogus one.
func WordsPerMinute(wordCount int, start, end time.Time) (int, bool) {
	if wordCount == 0 || start.IsZero() || end.IsZero() || !end.After(start) {
		return 0, false
	}
	minutes := end.Sub(start).Minutes()
	return int(math.Round(float64(wordCount) / minutes)), true
}

// Lookup finds the score for a displayed word by case-insensitive
// exact match, first match wins. Display-only: a miss means the word
// shows no feedback, it does not change the aggregate.
func Lookup(word string, scores []WordScore) (WordScore, bool) {
	for _, ws := range scores {
		if strings.EqualFold(word, ws.Word) {
			return ws, true
		}
	}
	return WordScore{}, false
}

package score

import (
	"testing"
	"time"

	"parrot/transcriber"
)

func TestGradeQuickBrownFox(t *testing.T) {
	entries := []transcriber.WordConfidence{
		{Word: "the", Confidence: 0.9},
		{Word: "quick", Confidence: 0.5},
		{Word: "brown", Confidence: 0.95},
		{Word: "fox", Confidence: 0.3},
	}

	r := Grade(entries, 4, time.Time{}, time.Time{})

	// round(100 * (0.9+0.5+0.95+0.3)/4) = round(66.25) = 66
	if r.Score != 66 {
		t.Errorf("Score = %d, want 66", r.Score)
	}
	if r.Feedback != "Good job! Keep practicing to improve." {
		t.Errorf("Feedback = %q", r.Feedback)
	}
	if len(r.Words) != 4 {
		t.Fatalf("got %d word scores, want 4", len(r.Words))
	}
	wantFlags := []bool{false, true, false, true}
	for i, ws := range r.Words {
		if ws.IsMispronounced != wantFlags[i] {
			t.Errorf("word %q mispronounced = %v, want %v", ws.Word, ws.IsMispronounced, wantFlags[i])
		}
	}
	if r.HasWPM {
		t.Error("WPM should be absent without timestamps")
	}
}

func TestGradeWordScores(t *testing.T) {
	entries := []transcriber.WordConfidence{
		{Word: "Hello", Confidence: 0.707},
		{Word: "WORLD", Confidence: 0.7},
		{Word: "again", Confidence: 0.699},
	}
	r := Grade(entries, 3, time.Time{}, time.Time{})

	if r.Words[0].Word != "hello" || r.Words[1].Word != "world" {
		t.Errorf("words not lowercased: %+v", r.Words)
	}
	if r.Words[0].Confidence != 71 {
		t.Errorf("confidence = %d, want 71", r.Words[0].Confidence)
	}
	// Threshold is strict less-than: exactly 0.7 passes.
	if r.Words[1].IsMispronounced {
		t.Error("confidence 0.7 should not be mispronounced")
	}
	if !r.Words[2].IsMispronounced {
		t.Error("confidence 0.699 should be mispronounced")
	}
}

func TestGradeScoreBounds(t *testing.T) {
	for _, tt := range []struct {
		name string
		conf float64
		want int
	}{
		{"all perfect", 1.0, 100},
		{"all zero", 0.0, 0},
		{"half", 0.5, 50},
	} {
		t.Run(tt.name, func(t *testing.T) {
			entries := []transcriber.WordConfidence{
				{Word: "a", Confidence: tt.conf},
				{Word: "b", Confidence: tt.conf},
			}
			r := Grade(entries, 2, time.Time{}, time.Time{})
			if r.Score != tt.want {
				t.Errorf("Score = %d, want %d", r.Score, tt.want)
			}
		})
	}
}

func TestFeedbackTiers(t *testing.T) {
	for _, tt := range []struct {
		score int
		want  string
	}{
		{100, "Excellent pronunciation!"},
		{85, "Excellent pronunciation!"},
		{84, "Good job! Keep practicing to improve."},
		{60, "Good job! Keep practicing to improve."},
		{59, "Keep practicing for better clarity."},
		{0, "Keep practicing for better clarity."},
	} {
		if got := Feedback(tt.score); got != tt.want {
			t.Errorf("Feedback(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestWordsPerMinute(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	wpm, ok := WordsPerMinute(10, start, start.Add(30*time.Second))
	if !ok || wpm != 20 {
		t.Errorf("got (%d, %v), want (20, true)", wpm, ok)
	}

	if _, ok := WordsPerMinute(10, time.Time{}, start); ok {
		t.Error("WPM present without start time")
	}
	if _, ok := WordsPerMinute(10, start, time.Time{}); ok {
		t.Error("WPM present without end time")
	}
	if _, ok := WordsPerMinute(10, start, start); ok {
		t.Error("WPM present with zero duration")
	}
	if _, ok := WordsPerMinute(10, start.Add(time.Second), start); ok {
		t.Error("WPM present with inverted timestamps")
	}
	if _, ok := WordsPerMinute(0, start, start.Add(time.Second)); ok {
		t.Error("WPM present with no words")
	}
}

func TestGradeWPM(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	entries := []transcriber.WordConfidence{{Word: "hi", Confidence: 1}}

	r := Grade(entries, 4, start, start.Add(12*time.Second))
	if !r.HasWPM || r.WPM != 20 {
		t.Errorf("got (%d, %v), want (20, true)", r.WPM, r.HasWPM)
	}
}

func TestLookup(t *testing.T) {
	scores := []WordScore{
		{Word: "the", Confidence: 90},
		{Word: "fox", Confidence: 30, IsMispronounced: true},
		{Word: "the", Confidence: 10, IsMispronounced: true},
	}

	ws, ok := Lookup("The", scores)
	if !ok {
		t.Fatal("expected match for The")
	}
	// Repeated words resolve to the first match.
	if ws.Confidence != 90 {
		t.Errorf("Confidence = %d, want 90 (first match)", ws.Confidence)
	}

	if _, ok := Lookup("quick", scores); ok {
		t.Error("unexpected match for quick")
	}
}

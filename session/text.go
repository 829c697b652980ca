// Package session drives one practice attempt: the recording state
// machine, the word pacing highlight, and the handoff to scoring and
// history.
package session

import "strings"

// Text is the sentence under practice. Words is the whitespace split
// used for display and pacing; it is fixed once an attempt starts.
type Text struct {
	Raw   string
	Words []string
}

func NewText(raw string) Text {
	return Text{Raw: raw, Words: strings.Fields(raw)}
}

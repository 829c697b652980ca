package transcriber

import (
	"context"
	"fmt"
	"time"
)

// FakeTranscriber returns canned entries without touching the network.
type FakeTranscriber struct {
	entries []WordConfidence
	err     error
	delay   time.Duration

	Calls int
}

func NewFake(entries []WordConfidence, err error) *FakeTranscriber {
	return &FakeTranscriber{entries: entries, err: err}
}

// SetDelay makes Transcribe block, so tests can overlap an in-flight
// result with a new session.
func (f *FakeTranscriber) SetDelay(d time.Duration) { f.delay = d }

func (f *FakeTranscriber) Name() string { return "fake" }

func (f *FakeTranscriber) Transcribe(ctx context.Context, _ []byte, _ string) ([]WordConfidence, error) {
	f.Calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, fmt.Errorf("fake transcriber error: %w", f.err)
	}
	out := make([]WordConfidence, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

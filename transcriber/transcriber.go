package transcriber

import (
	"context"
	"fmt"
	"os"
)

// WordConfidence is one recognized word with the service's estimated
// probability, in [0,1], that it was spoken correctly. Entries come
// back in recognition order and carry no guarantee of matching the
// practiced sentence in length, casing, or punctuation.
type WordConfidence struct {
	Word       string
	Confidence float64
}

// Transcriber submits a finished recording and returns per-word
// confidences. An empty slice with a nil error means the service
// heard no speech.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte, format string) ([]WordConfidence, error)
}

// New builds the transcriber from the environment.
func New() (Transcriber, error) {
	key := os.Getenv("WATSON_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("set WATSON_API_KEY environment variable")
	}
	apiURL := os.Getenv("WATSON_URL")
	if apiURL == "" {
		return nil, fmt.Errorf("set WATSON_URL to your service instance recognize endpoint")
	}
	return NewWatson(key, apiURL), nil
}

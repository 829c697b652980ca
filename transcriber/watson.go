package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const watsonModel = "en-US_BroadbandModel"

// Watson is the IBM Watson speech-to-text batch adapter. One POST per
// recording; no retry or backoff, callers classify any error as a
// transcription failure.
type Watson struct {
	apiKey string
	apiURL string
	client *http.Client
}

func NewWatson(apiKey, apiURL string) *Watson {
	return &Watson{
		apiKey: apiKey,
		apiURL: apiURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        1,
				MaxIdleConnsPerHost: 1,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		},
	}
}

func (w *Watson) Name() string { return "watson" }

// wordConfidencePair decodes Watson's heterogeneous pair arrays:
// ["word", 0.93].
type wordConfidencePair struct {
	Word       string
	Confidence float64
}

func (p *wordConfidencePair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("word_confidence pair has %d elements, want 2", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Word); err != nil {
		return fmt.Errorf("word_confidence word: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Confidence); err != nil {
		return fmt.Errorf("word_confidence value: %w", err)
	}
	return nil
}

type watsonResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript     string               `json:"transcript"`
			Confidence     float64              `json:"confidence"`
			WordConfidence []wordConfidencePair `json:"word_confidence"`
		} `json:"alternatives"`
	} `json:"results"`
}

func (w *Watson) Transcribe(ctx context.Context, audio []byte, format string) ([]WordConfidence, error) {
	contentType := "audio/wav"
	if format == "flac" {
		contentType = "audio/flac"
	}

	params := url.Values{}
	params.Set("model", watsonModel)
	params.Set("timestamps", "true")
	params.Set("word_confidence", "true")
	params.Set("profanity_filter", "false")
	params.Set("smart_formatting", "true")

	req, err := http.NewRequestWithContext(ctx, "POST", w.apiURL+"?"+params.Encode(), bytes.NewReader(audio))
	if err != nil {
		return nil, err
	}
	// Watson requires basic auth with the literal "apikey" username.
	req.SetBasicAuth("apikey", w.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("watson API error %d: %s", resp.StatusCode, string(respBody))
	}

	var wr watsonResponse
	if err := json.Unmarshal(respBody, &wr); err != nil {
		return nil, fmt.Errorf("watson response parse error: %w", err)
	}

	// Watson splits long audio into result segments; the best
	// alternative of each, concatenated, is recognition order.
	var entries []WordConfidence
	for _, res := range wr.Results {
		if len(res.Alternatives) == 0 {
			continue
		}
		for _, pair := range res.Alternatives[0].WordConfidence {
			entries = append(entries, WordConfidence{Word: pair.Word, Confidence: pair.Confidence})
		}
	}
	return entries, nil
}

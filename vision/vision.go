// Package vision extracts practice text from a photographed page via
// the Google Cloud Vision annotate endpoint.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultAPIURL = "https://vision.googleapis.com/v1/images:annotate"

// ErrNoText reports an image the service found no text in.
var ErrNoText = errors.New("no text found in image")

type Client struct {
	apiKey string
	apiURL string
	client *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		apiURL: defaultAPIURL,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithURL exists for tests pointing at a stub server.
func NewWithURL(apiKey, apiURL string) *Client {
	c := New(apiKey)
	c.apiURL = apiURL
	return c
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type string `json:"type"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateResponse struct {
	Responses []struct {
		FullTextAnnotation *struct {
			Text string `json:"text"`
		} `json:"fullTextAnnotation"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// ExtractText runs TEXT_DETECTION over the image and returns the full
// recognized text.
func (c *Client) ExtractText(ctx context.Context, image []byte) (string, error) {
	reqBody := annotateRequest{
		Requests: []annotateEntry{{
			Image:    annotateImage{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []annotateFeature{{Type: "TEXT_DETECTION"}},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+"?key="+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("vision API error %d: %s", resp.StatusCode, string(respBody))
	}

	var ar annotateResponse
	if err := json.Unmarshal(respBody, &ar); err != nil {
		return "", fmt.Errorf("vision response parse error: %w", err)
	}
	if len(ar.Responses) == 0 {
		return "", ErrNoText
	}
	first := ar.Responses[0]
	if first.Error != nil {
		return "", fmt.Errorf("vision annotate error: %s", first.Error.Message)
	}
	if first.FullTextAnnotation == nil || first.FullTextAnnotation.Text == "" {
		return "", ErrNoText
	}
	return first.FullTextAnnotation.Text, nil
}

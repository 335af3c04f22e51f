// Package summarize calls the Hugging Face Inference API and folds
// every transport/HTTP outcome into a small tagged result type.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Kind tags a provider call outcome. Retryable only changes the text
// shown to the user, who resubmits manually; the pipeline itself never
// retries.
type Kind int

const (
	KindSuccess Kind = iota
	KindRetryable
	KindFatal
)

type Outcome struct {
	Kind   Kind
	Text   string // summary text, set for Success
	Reason string // machine-readable reason, set for Retryable/Fatal
}

func Success(text string) Outcome {
	return Outcome{Kind: KindSuccess, Text: text}
}

func Retryable(reason string) Outcome {
	return Outcome{Kind: KindRetryable, Reason: reason}
}

func Fatal(reason string) Outcome {
	return Outcome{Kind: KindFatal, Reason: reason}
}

const (
	DefaultEndpoint = "https://api-inference.huggingface.co/models"
	DefaultModel    = "philschmid/bart-large-cnn-samsum"

	requestTimeout = 30 * time.Second
)

type Client struct {
	endpoint string
	model    string
	apiToken string
	http     *http.Client
}

func NewClient(endpoint, model, apiToken string) *Client {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		apiToken: apiToken,
		http:     &http.Client{Timeout: requestTimeout},
	}
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxLength         int     `json:"max_length"`
	MinLength         int     `json:"min_length"`
	DoSample          bool    `json:"do_sample"`
	Temperature       float64 `json:"temperature"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

type inferenceResult struct {
	SummaryText   string `json:"summary_text"`
	GeneratedText string `json:"generated_text"`
}

func buildPrompt(excerpt, displayName string) string {
	var b strings.Builder
	b.WriteString("Summarize the following episode dialogue")
	if strings.TrimSpace(displayName) != "" {
		b.WriteString(" from \"")
		b.WriteString(strings.TrimSpace(displayName))
		b.WriteString("\"")
	}
	b.WriteString(".\n")
	b.WriteString("Use only the supplied text and do not add outside information.\n")
	b.WriteString("Mention participants by their bracketed identifiers.\n")
	b.WriteString("Keep the result readable in under two minutes and omit minor detail.\n\n")
	b.WriteString(excerpt)
	return b.String()
}

// Summarize sends one request for the excerpt and classifies the
// outcome. It never returns an error: every failure mode is a tagged
// Outcome so the caller can match on kind instead of unwinding.
func (c *Client) Summarize(ctx context.Context, excerpt, displayName string) Outcome {
	prompt := buildPrompt(excerpt, displayName)

	body := inferenceRequest{
		Inputs: prompt,
		Parameters: inferenceParameters{
			MaxLength:         300,
			MinLength:         80,
			DoSample:          false,
			Temperature:       1.0,
			RepetitionPenalty: 1.15,
		},
	}
	b, _ := json.Marshal(body)

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	endpoint := c.endpoint + "/" + c.model
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return Fatal(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Retryable("timeout")
		}
		return Fatal(err.Error())
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		if isTimeout(readErr) {
			return Retryable("timeout")
		}
		return Fatal(readErr.Error())
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return classifyBody(raw, prompt)
	case http.StatusServiceUnavailable:
		return Retryable("model loading")
	case http.StatusTooManyRequests:
		return Retryable("rate limited")
	default:
		return Fatal(fmt.Sprintf("http %d", resp.StatusCode))
	}
}

func classifyBody(raw []byte, prompt string) Outcome {
	var results []inferenceResult
	if err := json.Unmarshal(raw, &results); err != nil || len(results) == 0 {
		return Fatal("unexpected response shape")
	}
	first := results[0]
	if text := strings.TrimSpace(first.SummaryText); text != "" {
		return Success(text)
	}
	if text := strings.TrimSpace(first.GeneratedText); text != "" {
		// Text-generation models echo the prompt before the answer.
		text = strings.TrimSpace(strings.TrimPrefix(text, strings.TrimSpace(prompt)))
		if text != "" {
			return Success(text)
		}
	}
	return Fatal("unexpected response shape")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

package summarize

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test/model", "token-123"), srv
}

const testExcerpt = "[Alice] Where were you last night? [Bob] I was at the harbor."

func TestSummarizeSuccess(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotBody inferenceRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("request body decode error = %v", err)
		}
		_, _ = w.Write([]byte(`[{"summary_text":"Alice confronts Bob about the harbor."}]`))
	})

	out := client.Summarize(context.Background(), testExcerpt, "Episode 3")
	if out.Kind != KindSuccess {
		t.Fatalf("kind mismatch: got %v want KindSuccess (reason=%q)", out.Kind, out.Reason)
	}
	if out.Text != "Alice confronts Bob about the harbor." {
		t.Fatalf("text mismatch: got %q", out.Text)
	}
	if gotAuth != "Bearer token-123" {
		t.Fatalf("auth header mismatch: got %q", gotAuth)
	}
	if !strings.Contains(gotBody.Inputs, testExcerpt) {
		t.Fatalf("prompt does not embed excerpt: %q", gotBody.Inputs)
	}
	if !strings.Contains(gotBody.Inputs, "Episode 3") {
		t.Fatalf("prompt does not mention display name: %q", gotBody.Inputs)
	}
	if gotBody.Parameters.DoSample {
		t.Fatalf("do_sample mismatch: got true want false")
	}
	if gotBody.Parameters.MaxLength != 300 || gotBody.Parameters.MinLength != 80 {
		t.Fatalf("length bounds mismatch: got max=%d min=%d", gotBody.Parameters.MaxLength, gotBody.Parameters.MinLength)
	}
	if gotBody.Parameters.RepetitionPenalty != 1.15 {
		t.Fatalf("repetition_penalty mismatch: got %v", gotBody.Parameters.RepetitionPenalty)
	}
}

func TestSummarizeGeneratedTextStripsEchoedPrompt(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req inferenceRequest
		_ = json.Unmarshal(raw, &req)
		resp := []inferenceResult{{GeneratedText: req.Inputs + "\nBob explains the harbor trip."}}
		_ = json.NewEncoder(w).Encode(resp)
	})

	out := client.Summarize(context.Background(), testExcerpt, "Episode 3")
	if out.Kind != KindSuccess {
		t.Fatalf("kind mismatch: got %v want KindSuccess (reason=%q)", out.Kind, out.Reason)
	}
	if out.Text != "Bob explains the harbor trip." {
		t.Fatalf("text mismatch: got %q", out.Text)
	}
}

func TestSummarizeEmptyListIsFatal(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	out := client.Summarize(context.Background(), testExcerpt, "")
	if out.Kind != KindFatal {
		t.Fatalf("kind mismatch: got %v want KindFatal", out.Kind)
	}
	if out.Reason != "unexpected response shape" {
		t.Fatalf("reason mismatch: got %q want %q", out.Reason, "unexpected response shape")
	}
}

func TestSummarizeMissingFieldsIsFatal(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"score":0.99}]`))
	})

	out := client.Summarize(context.Background(), testExcerpt, "")
	if out.Kind != KindFatal {
		t.Fatalf("kind mismatch: got %v want KindFatal", out.Kind)
	}
	if out.Reason != "unexpected response shape" {
		t.Fatalf("reason mismatch: got %q", out.Reason)
	}
}

func TestSummarizeServiceUnavailableIsRetryable(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Model test/model is currently loading"}`, http.StatusServiceUnavailable)
	})

	out := client.Summarize(context.Background(), testExcerpt, "")
	if out.Kind != KindRetryable {
		t.Fatalf("kind mismatch: got %v want KindRetryable", out.Kind)
	}
	if out.Reason != "model loading" {
		t.Fatalf("reason mismatch: got %q want %q", out.Reason, "model loading")
	}
}

func TestSummarizeTooManyRequestsIsRetryable(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limit", http.StatusTooManyRequests)
	})

	out := client.Summarize(context.Background(), testExcerpt, "")
	if out.Kind != KindRetryable {
		t.Fatalf("kind mismatch: got %v want KindRetryable", out.Kind)
	}
	if out.Reason != "rate limited" {
		t.Fatalf("reason mismatch: got %q want %q", out.Reason, "rate limited")
	}
}

func TestSummarizeOtherStatusIsFatalWithCode(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	out := client.Summarize(context.Background(), testExcerpt, "")
	if out.Kind != KindFatal {
		t.Fatalf("kind mismatch: got %v want KindFatal", out.Kind)
	}
	if out.Reason != "http 502" {
		t.Fatalf("reason mismatch: got %q want %q", out.Reason, "http 502")
	}
}

func TestSummarizeDeadlineIsRetryableTimeout(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 1)
	defer cancel()
	out := client.Summarize(ctx, testExcerpt, "")
	if out.Kind != KindRetryable {
		t.Fatalf("kind mismatch: got %v want KindRetryable (reason=%q)", out.Kind, out.Reason)
	}
	if out.Reason != "timeout" {
		t.Fatalf("reason mismatch: got %q want %q", out.Reason, "timeout")
	}
}

func TestSummarizeTransportErrorIsFatal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(url, "test/model", "token")
	out := client.Summarize(context.Background(), testExcerpt, "")
	if out.Kind != KindFatal {
		t.Fatalf("kind mismatch: got %v want KindFatal (reason=%q)", out.Kind, out.Reason)
	}
	if out.Reason == "" {
		t.Fatalf("reason mismatch: got empty want transport error text")
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/supportq/internal/classify"
)

func classifierFor(handler http.HandlerFunc) (*LLMClassifier, func()) {
	srv := httptest.NewServer(handler)
	c := NewClient(srv.URL, "gpt-4o-mini", "test-key").WithRetryBase(time.Millisecond)
	return NewLLMClassifier(c), srv.Close
}

func TestLLMClassifySuccess(t *testing.T) {
	l, done := classifierFor(func(w http.ResponseWriter, r *http.Request) {
		content := `{"category":"Technical Issues","confidence":0.82,` +
			`"reasoning":"mentions an error","sentiment":"neutral","urgency":"normal"}`
		fmt.Fprint(w, completionBody(content, 120))
	})
	defer done()

	r := l.Classify(context.Background(), classify.QueryInput{Text: "something is wrong"})

	if r.Category != classify.CategoryTechnical {
		t.Errorf("category = %v, want Technical Issues", r.Category)
	}
	if r.Confidence != 0.82 {
		t.Errorf("confidence = %v, want 0.82", r.Confidence)
	}
	if r.Method != classify.MethodLLMFallback {
		t.Errorf("method = %v, want llm-fallback", r.Method)
	}
	if r.Reasoning != "mentions an error" {
		t.Errorf("reasoning = %q, neutral sentiment must not be appended", r.Reasoning)
	}
	if r.TokensUsed != 120 {
		t.Errorf("tokens = %d, want 120", r.TokensUsed)
	}
	wantCost := 120.0 / 1000.0 * costPerThousandTokens
	if r.EstimatedCost != wantCost {
		t.Errorf("cost = %v, want %v", r.EstimatedCost, wantCost)
	}
}

func TestLLMClassifyCapsConfidence(t *testing.T) {
	l, done := classifierFor(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionBody(`{"category":"Bug Reports","confidence":1.0,"reasoning":"sure"}`, 50))
	})
	defer done()

	r := l.Classify(context.Background(), classify.QueryInput{Text: "broken thing"})
	if r.Confidence != maxLLMConfidence {
		t.Errorf("confidence = %v, want cap %v", r.Confidence, maxLLMConfidence)
	}
}

func TestLLMClassifyUnknownCategory(t *testing.T) {
	l, done := classifierFor(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionBody(`{"category":"Shipping","confidence":0.8,"reasoning":"x"}`, 30))
	})
	defer done()

	r := l.Classify(context.Background(), classify.QueryInput{Text: "where is my order"})
	if r.Category != classify.CategoryGeneral {
		t.Errorf("category = %v, unknown names must map to General", r.Category)
	}
	if r.Confidence != 0.8 {
		t.Errorf("confidence = %v, want the model's 0.8 (the call itself succeeded)", r.Confidence)
	}
}

func TestLLMClassifyAppendsSentimentAndUrgency(t *testing.T) {
	l, done := classifierFor(func(w http.ResponseWriter, r *http.Request) {
		content := `{"category":"Billing & Payments","confidence":0.7,` +
			`"reasoning":"angry about charge","sentiment":"negative","urgency":"high"}`
		fmt.Fprint(w, completionBody(content, 80))
	})
	defer done()

	r := l.Classify(context.Background(), classify.QueryInput{Text: "charged again!!"})
	if !strings.HasSuffix(r.Reasoning, "[Sentiment: negative, Urgency: high]") {
		t.Errorf("reasoning = %q, want sentiment/urgency suffix", r.Reasoning)
	}
}

func TestLLMClassifyFallbackOnServerFailure(t *testing.T) {
	l, done := classifierFor(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer done()

	r := l.Classify(context.Background(), classify.QueryInput{Text: "anything at all"})

	if r.Category != classify.CategoryGeneral {
		t.Errorf("category = %v, want General", r.Category)
	}
	if r.Confidence != 0.3 {
		t.Errorf("confidence = %v, want 0.3", r.Confidence)
	}
	if r.Method != classify.MethodLLMFallback {
		t.Errorf("method = %v, want llm-fallback", r.Method)
	}
	if !strings.HasPrefix(r.Reasoning, "LLM classification failed:") {
		t.Errorf("reasoning = %q", r.Reasoning)
	}
}

func TestLLMClassifyFallbackOnBadJSON(t *testing.T) {
	l, done := classifierFor(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionBody(`I think this is a billing question`, 25))
	})
	defer done()

	r := l.Classify(context.Background(), classify.QueryInput{Text: "anything at all"})
	if r.Method != classify.MethodLLMFallback {
		t.Errorf("method = %v, want llm-fallback on unparseable content", r.Method)
	}
}

func TestLLMClassifyUnconfigured(t *testing.T) {
	l := NewLLMClassifier(NewClient("", "", ""))
	r := l.Classify(context.Background(), classify.QueryInput{Text: "anything at all"})
	if r.Method != classify.MethodLLMFallback {
		t.Errorf("method = %v, want llm-fallback", r.Method)
	}
}

func TestPromptsNameEveryCategory(t *testing.T) {
	p := ClassificationPrompt("test query")
	for _, c := range classify.AllCategories() {
		if !strings.Contains(p, string(c)) {
			t.Errorf("classification prompt missing category %q", c)
		}
	}
	if !strings.Contains(p, "test query") {
		t.Error("classification prompt missing the query text")
	}
}

func TestValidationPrompt(t *testing.T) {
	p := ValidationPrompt("why was I billed twice", string(classify.CategoryBilling))
	if !strings.Contains(p, `"Billing & Payments"`) {
		t.Error("validation prompt missing the label under review")
	}
	if !strings.Contains(p, "why was I billed twice") {
		t.Error("validation prompt missing the query text")
	}
	for _, key := range []string{`"agrees"`, `"category"`, `"confidence"`, `"reasoning"`} {
		if !strings.Contains(p, key) {
			t.Errorf("validation prompt missing response key %s", key)
		}
	}
}

func TestMultiIntentPrompt(t *testing.T) {
	p := MultiIntentPrompt("refund and a crash")
	for _, c := range classify.AllCategories() {
		if !strings.Contains(p, string(c)) {
			t.Errorf("multi-intent prompt missing category %q", c)
		}
	}
	if !strings.Contains(p, "refund and a crash") {
		t.Error("multi-intent prompt missing the query text")
	}
	for _, key := range []string{`"intents"`, `"primary"`} {
		if !strings.Contains(p, key) {
			t.Errorf("multi-intent prompt missing response key %s", key)
		}
	}
}

// Package gemini explains conflicts with Google Gemini. Explanations are
// advisory text for the person resolving a conflict; they never pick an
// alternative.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/revise"
	"github.com/fwojciec/revise/annotate"
)

// Compile-time interface verification.
var _ revise.Explainer = (*Explainer)(nil)

const (
	// DefaultExplainTimeout bounds a single explain call, retries included.
	DefaultExplainTimeout = 60 * time.Second
	// DefaultRetries is how many times a retryable API error is retried.
	DefaultRetries = 2

	promptContext = 300
)

// Explainer implements revise.Explainer using Google Gemini.
type Explainer struct {
	client  GenerativeClient
	model   string
	timeout time.Duration
	retries int
	backoff time.Duration
}

// ExplainerOption configures an Explainer.
type ExplainerOption func(*Explainer)

// WithTimeout sets the timeout for API calls.
func WithTimeout(d time.Duration) ExplainerOption {
	return func(e *Explainer) {
		e.timeout = d
	}
}

// WithRetries sets how often rate-limit and server errors are retried, and
// the initial backoff between attempts. The backoff doubles per attempt.
func WithRetries(n int, backoff time.Duration) ExplainerOption {
	return func(e *Explainer) {
		e.retries = n
		e.backoff = backoff
	}
}

// NewExplainer creates a new Explainer.
func NewExplainer(client GenerativeClient, model string, opts ...ExplainerOption) *Explainer {
	if model == "" {
		model = DefaultModel
	}
	e := &Explainer{
		client:  client,
		model:   model,
		timeout: DefaultExplainTimeout,
		retries: DefaultRetries,
		backoff: time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Explanation is the structured response requested from the model.
type Explanation struct {
	Summary      string   `json:"summary"`
	Alternatives []Effect `json:"alternatives"`
}

// Effect describes what one reviewer's alternative does to the text.
type Effect struct {
	Reviewer string `json:"reviewer"`
	Effect   string `json:"effect"`
}

// String renders the explanation as display text.
func (x Explanation) String() string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(x.Summary))
	for _, a := range x.Alternatives {
		fmt.Fprintf(&sb, "\n- %s: %s", a.Reviewer, strings.TrimSpace(a.Effect))
	}
	return sb.String()
}

// Explain describes how the alternatives of c differ.
func (e *Explainer) Explain(ctx context.Context, c revise.Conflict, base string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	contents := []*Content{{
		Parts: []*Part{{Text: BuildExplainPrompt(c, base)}},
	}}
	config := BuildExplainConfig()

	resp, err := e.generate(ctx, contents, config)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("gemini: returned nil response")
	}

	var x Explanation
	if err := json.Unmarshal([]byte(resp.Text), &x); err != nil {
		return "", fmt.Errorf("gemini: failed to parse response: %w", err)
	}
	return x.String(), nil
}

func (e *Explainer) generate(ctx context.Context, contents []*Content, config *GenerateContentConfig) (*GenerateContentResponse, error) {
	delay := e.backoff
	for attempt := 0; ; attempt++ {
		resp, err := e.client.GenerateContent(ctx, e.model, contents, config)
		var apiErr *APIError
		if err == nil || attempt >= e.retries || !errors.As(err, &apiErr) || !apiErr.Retryable() {
			return resp, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// BuildExplainPrompt creates the user prompt for one conflict.
func BuildExplainPrompt(c revise.Conflict, base string) string {
	var sb strings.Builder
	sb.WriteString("Several reviewers edited the same passage of a manuscript in different ways.\n\n")

	sb.WriteString("## Passage in context\n\n")
	if c.Start >= 0 && c.Start <= c.End && c.End <= len(base) {
		before := base[max(0, c.Start-promptContext):c.Start]
		after := base[c.End:min(len(base), c.End+promptContext)]
		fmt.Fprintf(&sb, "%s[[%s]]%s\n\n", before, c.Original, after)
	} else {
		fmt.Fprintf(&sb, "[[%s]]\n\n", c.Original)
	}

	sb.WriteString("## Alternatives\n\n")
	for _, alt := range c.Alternatives() {
		edits := make([]string, 0, len(alt.Changes))
		for _, ch := range alt.Changes {
			edits = append(edits, annotate.Markup(ch))
		}
		fmt.Fprintf(&sb, "- %s (%s): %s\n", alt.Reviewer, alt.Kind(), strings.Join(edits, " "))
	}

	sb.WriteString(`
## Task

The passage between [[ and ]] is the original text. Each alternative is written in
CriticMarkup: {++added++}, {--removed--}, {~~old~>new~~}.

Summarise in one sentence what the reviewers disagree about, then describe the
effect of each alternative on meaning, tone or accuracy in one sentence each.
Do not recommend an alternative and do not rank them.

Respond with JSON: {"summary": "...", "alternatives": [{"reviewer": "...", "effect": "..."}]}
`)
	return sb.String()
}

// BuildExplainConfig returns the GenerateContentConfig for explain calls.
func BuildExplainConfig() *GenerateContentConfig {
	temp := float32(0.2)
	return &GenerateContentConfig{
		SystemInstruction: &Content{
			Parts: []*Part{{
				Text: `You are an academic copy editor. You compare competing edits to a manuscript neutrally and never choose between them.`,
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema: &Schema{
			Type: "OBJECT",
			Properties: map[string]*Schema{
				"summary": {Type: "STRING", Description: "What the reviewers disagree about"},
				"alternatives": {
					Type: "ARRAY",
					Items: &Schema{
						Type: "OBJECT",
						Properties: map[string]*Schema{
							"reviewer": {Type: "STRING"},
							"effect":   {Type: "STRING"},
						},
						Required:         []string{"reviewer", "effect"},
						PropertyOrdering: []string{"reviewer", "effect"},
					},
				},
			},
			Required:         []string{"summary", "alternatives"},
			PropertyOrdering: []string{"summary", "alternatives"},
		},
	}
}

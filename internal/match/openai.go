package match

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// chatClient is the slice of the OpenAI client the matcher needs.
// Abstracted so tests can fake the completion call.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIMatcher resolves query terms by asking a chat model to match
// them against the candidate list. Output is not guaranteed stable
// across calls — callers needing determinism use NormalizeMatcher.
type OpenAIMatcher struct {
	client  chatClient
	model   string
	timeout time.Duration
}

// NewOpenAIMatcher creates a matcher backed by the OpenAI API. timeout
// bounds each matching call on top of the caller's context.
func NewOpenAIMatcher(apiKey, model string, timeout time.Duration) *OpenAIMatcher {
	return &OpenAIMatcher{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

const matchSystemPrompt = "Match user-requested schedule names to available schedules. " +
	"Return ONLY a JSON array of integers with exactly one element per requested name, " +
	"in the same order, using -1 when no schedule matches. No markdown code fences."

// Match asks the model for one candidate id per query. A transport
// failure, timeout, or unparsable reply comes back as an error; the
// caller (the chain) absorbs it. Ids outside the candidate set are
// demoted to "not found" — resolution never invents identifiers.
func (m *OpenAIMatcher) Match(ctx context.Context, candidates []Candidate, queries []string) ([]Result, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	prompt, err := buildPrompt(candidates, queries)
	if err != nil {
		return nil, err
	}

	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: matchSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("matching call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("matching call returned no choices")
	}

	ids, err := parseIDArray(resp.Choices[0].Message.Content, len(queries))
	if err != nil {
		return nil, err
	}

	valid := make(map[int64]bool, len(candidates))
	for _, c := range candidates {
		valid[c.ID] = true
	}

	results := make([]Result, len(queries))
	for i, q := range queries {
		results[i] = Result{Query: q}
		if valid[ids[i]] {
			results[i].ID = ids[i]
			results[i].Found = true
		}
	}
	return results, nil
}

// buildPrompt mirrors the matching prompt: candidate records as JSON
// plus the requested names.
func buildPrompt(candidates []Candidate, queries []string) (string, error) {
	type schedule struct {
		UserScheduleID int64  `json:"user_schedule_id"`
		Name           string `json:"name"`
	}
	list := make([]schedule, len(candidates))
	for i, c := range candidates {
		list[i] = schedule{UserScheduleID: c.ID, Name: c.Name}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding candidates: %w", err)
	}
	return fmt.Sprintf(
		"Available schedules:\n%s\n\nRequested names: %s\n\n"+
			"Return a JSON array of integers: the user_schedule_id values whose 'name' best match the requested names, -1 for no match.",
		data, strings.Join(queries, ", "),
	), nil
}

// parseIDArray decodes the model's reply into exactly want ids. Code
// fences are stripped first — models add them despite instructions.
func parseIDArray(reply string, want int) ([]int64, error) {
	s := strings.TrimSpace(reply)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var ids []int64
	if err := json.Unmarshal([]byte(s), &ids); err != nil {
		return nil, fmt.Errorf("unparsable matcher reply %q: %w", reply, err)
	}
	if len(ids) != want {
		return nil, fmt.Errorf("matcher reply has %d ids, want %d", len(ids), want)
	}
	return ids, nil
}

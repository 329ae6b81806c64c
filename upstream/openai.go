package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIModel implements LanguageModel on the OpenAI chat completions API.
type OpenAIModel struct {
	client openai.Client
	model  string
}

// NewOpenAIModel creates an OpenAI-backed language model. model may be
// empty to use the default.
func NewOpenAIModel(apiKey, model string) (*OpenAIModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIModel{client: client, model: model}, nil
}

const normalizeSystemPrompt = `You normalize dictated text for a retirement plan enrollment form.
Resolve spelled-out numbers to digits. Respond with JSON only:
{"normalizedText": string, "numbers": [{"original": string, "value": number}]}`

// Normalize asks the model for a digit-resolved rendering of the text.
func (m *OpenAIModel) Normalize(ctx context.Context, task, text string) (*NormalizeResult, error) {
	user := fmt.Sprintf("Task: %s\nText: %s", task, text)
	completion, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: m.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(normalizeSystemPrompt),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("openai normalize: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("openai normalize: empty completion")
	}

	var out NormalizeResult
	if err := json.Unmarshal([]byte(extractJSON(completion.Choices[0].Message.Content)), &out); err != nil {
		return nil, fmt.Errorf("openai normalize: decoding model output: %w", err)
	}
	if out.NormalizedText == "" {
		out.NormalizedText = text
	}
	return &out, nil
}

const polishSystemPrompt = `You polish dictated text for a retirement plan enrollment form.
Fix grammar and flow without changing meaning. Respond with the polished text only.`

// Polish asks the model for a cleaned-up rendering honoring tone and constraints.
func (m *OpenAIModel) Polish(ctx context.Context, req PolishRequest) (string, error) {
	var sb strings.Builder
	sb.WriteString("Text: " + req.Text)
	if req.Tone != "" {
		sb.WriteString("\nTone: " + req.Tone)
	}
	if len(req.Constraints) > 0 {
		sb.WriteString("\nConstraints: " + strings.Join(req.Constraints, "; "))
	}

	completion, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: m.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(polishSystemPrompt),
			openai.UserMessage(sb.String()),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("openai polish: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("openai polish: empty completion")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// extractJSON trims markdown code fences some models wrap around JSON output.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

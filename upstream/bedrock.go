package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

const defaultBedrockModel = "anthropic.claude-3-5-haiku-20241022-v1:0"

// BedrockModel implements LanguageModel on AWS Bedrock via the runtime
// InvokeModel API with Anthropic-family models.
type BedrockModel struct {
	client *bedrockruntime.Client
	model  string
}

// BedrockOptions configures NewBedrockModel. AccessKey/SecretKey are
// optional; when empty the SDK's default credential chain applies.
type BedrockOptions struct {
	Region    string
	Model     string
	AccessKey string
	SecretKey string
}

// NewBedrockModel creates a Bedrock-backed language model.
func NewBedrockModel(ctx context.Context, opts BedrockOptions) (*BedrockModel, error) {
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}
	if opts.Model == "" {
		opts.Model = defaultBedrockModel
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &BedrockModel{
		client: bedrockruntime.NewFromConfig(cfg),
		model:  opts.Model,
	}, nil
}

type bedrockMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system,omitempty"`
	Messages         []bedrockMessage `json:"messages"`
	Temperature      float64          `json:"temperature"`
}

type bedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func (m *BedrockModel) invoke(ctx context.Context, system, user string, temperature float64) (string, error) {
	body, err := json.Marshal(bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        1024,
		System:           system,
		Messages:         []bedrockMessage{{Role: "user", Content: user}},
		Temperature:      temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling bedrock request: %w", err)
	}

	output, err := m.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(m.model),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock invoke failed: %w", err)
	}

	var resp bedrockResponse
	if err := json.Unmarshal(output.Body, &resp); err != nil {
		return "", fmt.Errorf("unmarshaling bedrock response: %w", err)
	}

	var text strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	return text.String(), nil
}

// Normalize asks the model for a digit-resolved rendering of the text.
func (m *BedrockModel) Normalize(ctx context.Context, task, text string) (*NormalizeResult, error) {
	user := fmt.Sprintf("Task: %s\nText: %s", task, text)
	raw, err := m.invoke(ctx, normalizeSystemPrompt, user, 0)
	if err != nil {
		return nil, err
	}

	var out NormalizeResult
	if err := json.Unmarshal([]byte(extractJSON(raw)), &out); err != nil {
		return nil, fmt.Errorf("bedrock normalize: decoding model output: %w", err)
	}
	if out.NormalizedText == "" {
		out.NormalizedText = text
	}
	return &out, nil
}

// Polish asks the model for a cleaned-up rendering honoring tone and constraints.
func (m *BedrockModel) Polish(ctx context.Context, req PolishRequest) (string, error) {
	var sb strings.Builder
	sb.WriteString("Text: " + req.Text)
	if req.Tone != "" {
		sb.WriteString("\nTone: " + req.Tone)
	}
	if len(req.Constraints) > 0 {
		sb.WriteString("\nConstraints: " + strings.Join(req.Constraints, "; "))
	}

	raw, err := m.invoke(ctx, polishSystemPrompt, sb.String(), 0.2)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

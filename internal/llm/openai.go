package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/podiumlabs/podium/internal/models"
)

// OpenAIClient is a Client backed by the OpenAI chat-completions API.
// The credential comes from the OPENAI_API_KEY environment variable,
// which the SDK reads by default.
type OpenAIClient struct {
	client openai.Client
}

// OpenAIClientArgs holds the arguments for creating an OpenAI client.
type OpenAIClientArgs struct {
	// APIKey overrides the environment-provided credential when set.
	APIKey string
	// BaseURL overrides the API endpoint, e.g. for Azure-hosted deployments.
	BaseURL string
}

// NewOpenAIClient creates an [OpenAIClient].
func NewOpenAIClient(args OpenAIClientArgs) *OpenAIClient {
	var opts []option.RequestOption
	if args.APIKey != "" {
		opts = append(opts, option.WithAPIKey(args.APIKey))
	}
	if args.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(args.BaseURL))
	}
	return &OpenAIClient{client: openai.NewClient(opts...)}
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) ([]Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: toOpenAIMessages(req.Messages),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.TopP != nil {
		params.TopP = openai.Float(*req.TopP)
	}
	if req.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*req.MaxTokens))
	}
	if req.N > 1 {
		params.N = openai.Int(int64(req.N))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: response contained no choices")
	}

	completions := make([]Completion, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		completions = append(completions, Completion{
			Text:        choice.Message.Content,
			TotalTokens: resp.Usage.TotalTokens,
		})
	}
	return completions, nil
}

func toOpenAIMessages(msgs []models.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case models.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case models.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

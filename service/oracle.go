package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/swapnilgarg7/sync-sure/config"
)

// OracleService wraps the external text-generation endpoint that performs the
// actual compliance reasoning. It never interprets the model output; callers
// get the raw text back. Failures surface as errors with no retry.
type OracleService struct {
	client      openai.Client
	model       string
	temperature float64
}

func NewOracleService(cfg *config.OracleConfig) *OracleService {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OracleService{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Invoke sends the rendered prompt and returns the raw model output.
func (s *OracleService) Invoke(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if s.temperature > 0 {
		params.Temperature = openai.Float(s.temperature)
	}

	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("oracle request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("oracle returned no choices")
	}

	slog.Info("oracle invoked",
		"model", s.model,
		"prompt_len", len(prompt),
		"output_len", len(completion.Choices[0].Message.Content),
		"total_tokens", completion.Usage.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return completion.Choices[0].Message.Content, nil
}

// Embed generates embedding vectors for the given texts using the named
// embedding model on the same endpoint. Used by the similarity index.
func (s *OracleService) Embed(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := s.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vectors[d.Index] = vec
	}
	return vectors, nil
}

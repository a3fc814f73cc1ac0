// Package openai implements the embedding provider on top of the official
// OpenAI Go SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

// ErrEmptyInput is returned when Embed is called with empty input.
var ErrEmptyInput = errors.New("openai: input text is empty")

// ErrNoEmbeddingInResponse is returned when the API response contains no embedding data.
var ErrNoEmbeddingInResponse = errors.New("openai: no embedding in response")

const defaultModel = string(openaisdk.EmbeddingModelTextEmbedding3Small)

// Client calls the OpenAI embeddings API via the official SDK.
type Client struct {
	sdk       openaisdk.Client
	modelName string
}

// NewClient creates an OpenAI embeddings client. An empty model selects
// text-embedding-3-small.
func NewClient(apiKey, model string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Client{
		sdk:       openaisdk.NewClient(option.WithAPIKey(apiKey)),
		modelName: model,
	}, nil
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	resp, err := c.sdk.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfString: param.NewOpt(text),
		},
		Model: openaisdk.EmbeddingModel(c.modelName),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, ErrNoEmbeddingInResponse
	}

	emb := resp.Data[0].Embedding
	out := make([]float32, len(emb))
	for i := range emb {
		out[i] = float32(emb[i])
	}

	return out, nil
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.modelName
}

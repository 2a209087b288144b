package embed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sandevgo/lobug/internal/core"
	"github.com/sandevgo/lobug/pkg/retry"
)

// OpenAI calls an OpenAI-compatible /embeddings endpoint. With the default
// base URL this is Ollama serving nomic-embed-text.
type OpenAI struct {
	client  openai.Client
	model   string
	dim     int
	retrier *retry.Retrier
}

var _ core.Embedder = (*OpenAI)(nil)

func NewOpenAI(baseURL, apiKey, model string, dim int) *OpenAI {
	opts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(30 * time.Second),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}

	return &OpenAI{
		client:  openai.NewClient(opts...),
		model:   model,
		dim:     dim,
		retrier: retry.NewDefaultRetrier(),
	}
}

func (o *OpenAI) Dims() int {
	return o.dim
}

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(o.model),
	}
	if o.dim > 0 {
		params.Dimensions = openai.Int(int64(o.dim))
	}

	var vec []float32
	err := o.retrier.Do(ctx, func(ctx context.Context) error {
		resp, err := o.client.Embeddings.New(ctx, params)
		if err != nil {
			var apiErr *openai.Error
			if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != 429 {
				return retry.Permanent(err)
			}
			return err
		}
		if len(resp.Data) == 0 {
			return errors.New("no embedding returned")
		}

		raw := resp.Data[0].Embedding
		vec = make([]float32, len(raw))
		for i, v := range raw {
			vec[i] = float32(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	if err := checkDims(vec, o.dim); err != nil {
		return nil, err
	}
	return vec, nil
}

func checkDims(vec []float32, dim int) error {
	if len(vec) != dim {
		return fmt.Errorf("%w: embedder returned %d, want %d", core.ErrDimensionMismatch, len(vec), dim)
	}
	return nil
}

// Package gemini embeds texts with the Gemini embedding API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/jobrank/internal/utils"
)

const (
	defaultModel     = "text-embedding-004"
	defaultBatchSize = 100
	maxAttempts      = 3
	retryDelay       = 2 * time.Second
	// Postings and profiles are compared symmetrically.
	taskType = "SEMANTIC_SIMILARITY"
)

// wait is replaced in tests.
var wait = utils.WaitFor

type embedClient interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Encoder wraps the Google GenAI client.
type Encoder struct {
	client    embedClient
	modelName string
	batchSize int
	logger    *zap.Logger
}

// NewEncoder creates an Encoder for the Gemini API backend.
func NewEncoder(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Encoder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newEncoder(client.Models, model, logger), nil
}

func newEncoder(client embedClient, model string, logger *zap.Logger) *Encoder {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Encoder{
		client:    client,
		modelName: model,
		batchSize: defaultBatchSize,
		logger:    logger.With(zap.String("model", model)),
	}
}

// Encode embeds texts in batches of at most batchSize.
func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if e == nil || e.client == nil {
		return nil, errors.New("gemini encoder is not initialized")
	}
	if len(texts) == 0 {
		return nil, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		batch, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

func (e *Encoder) Version() string {
	if e == nil {
		return ""
	}
	return e.modelName
}

func (e *Encoder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: text}},
		}
	}
	cfg := &genai.EmbedContentConfig{TaskType: taskType}

	var (
		resp *genai.EmbedContentResponse
		err  error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err = e.client.EmbedContent(ctx, e.modelName, contents, cfg)
		if err == nil || !isTemporary(err) || attempt == maxAttempts {
			break
		}

		e.logger.Warn("gemini embed content failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if waitErr := wait(ctx, retryDelay*time.Duration(attempt)); waitErr != nil {
			return nil, waitErr
		}
	}
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("gemini api returned %d embeddings for %d texts", got, len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, embedding := range resp.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, fmt.Errorf("gemini api returned empty embedding at %d", i)
		}
		vectors[i] = embedding.Values
	}

	e.logger.Debug("gemini embed content response",
		zap.Int("texts", len(texts)),
		zap.Int("dimensions", len(vectors[0])),
	)

	return vectors, nil
}

// isTemporary reports rate limiting and server side failures.
func isTemporary(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return false
}

package semantic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/jobrank/internal/semantic/gemini"
	"github.com/spigell/jobrank/internal/semantic/ollama"
)

const (
	BackendNone   = ""
	BackendGemini = "gemini"
	BackendOllama = "ollama"
)

// Config selects the embedding backend. An empty Backend disables semantic
// scoring.
type Config struct {
	Backend string
	Model   string
	// APIKey is required by the gemini backend.
	APIKey string
	// BaseURL points at the ollama server.
	BaseURL string
	Timeout time.Duration
}

// NewEncoder builds the configured encoder. It returns a nil Encoder and no
// error when no backend is configured.
func NewEncoder(ctx context.Context, cfg Config, logger *zap.Logger) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendNone:
		return nil, nil
	case BackendGemini:
		enc, err := gemini.NewEncoder(ctx, cfg.APIKey, cfg.Model, logger)
		if err != nil {
			return nil, fmt.Errorf("create gemini encoder: %w", err)
		}
		return enc, nil
	case BackendOllama:
		return ollama.NewEncoder(cfg.BaseURL, cfg.Model, cfg.Timeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown semantic backend %q (known: %s, %s)", cfg.Backend, BackendGemini, BackendOllama)
	}
}

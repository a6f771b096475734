package gateway

import (
	"context"
	"fmt"
	"time"

	"basera/internal/config"
	"basera/internal/metrics"
	"basera/internal/models"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// GeminiGateway sends the full conversation history plus the fixed system
// instruction and tool schema on every call. Stateless across calls; no
// retry on failure.
type GeminiGateway struct {
	client      *genai.Client
	model       string
	temperature float32
	logger      *zerolog.Logger
}

func NewGeminiGateway(ctx context.Context, cfg config.GeminiConfig, logger *zerolog.Logger) (*GeminiGateway, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	l := logger.With().Str("component", "gateway").Logger()
	return &GeminiGateway{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      &l,
	}, nil
}

func (g *GeminiGateway) Generate(ctx context.Context, history []models.ChatMessage) (*models.ModelReply, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		Tools:             []*genai.Tool{{FunctionDeclarations: toolDeclarations()}},
	}
	if g.temperature > 0 {
		cfg.Temperature = genai.Ptr[float32](g.temperature)
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, toContents(history), cfg)
	metrics.ObserveGatewayCall(err == nil, time.Since(start))
	if err != nil {
		g.logger.Error().Err(err).Int("history_len", len(history)).Msg("model call failed")
		return nil, fmt.Errorf("model gateway: %w", err)
	}

	reply := toReply(resp)
	g.logger.Debug().
		Int("history_len", len(history)).
		Int("function_calls", len(reply.FunctionCalls)).
		Bool("has_text", reply.Text != "").
		Msg("model reply")

	return reply, nil
}

package openai

import (
	"context"

	"go.uber.org/zap"

	"quoteme-backend/application/ports"
)

// ImageGenerator implements ports.ImageGenerator on the OpenAI image API
type ImageGenerator struct {
	client *Client
	logger *zap.Logger
}

// NewImageGenerator creates a new model-backed image generator
func NewImageGenerator(client *Client, logger *zap.Logger) ports.ImageGenerator {
	return &ImageGenerator{client: client, logger: logger}
}

// Generate produces image bytes for the given prompt
func (g *ImageGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	data, err := g.client.generateImage(ctx, prompt)
	if err != nil {
		return nil, err
	}

	g.logger.Info("Image generated", zap.Int("size", len(data)))
	return data, nil
}

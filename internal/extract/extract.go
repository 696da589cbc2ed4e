// Package extract reads a medicine name and dosage from a photo of its
// packaging using a vision model.
package extract

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/notexe/medimind/internal/api"
	"github.com/notexe/medimind/internal/logger"
)

// Placeholder results. Extraction never fails loudly; callers show these
// strings in place of a name.
const (
	NotConfigured = "Text extraction not configured."
	Unreadable    = "Could not read medicine name from image."
)

const prompt = "From the provided image of medication packaging, extract only the primary medicine name and its dosage (e.g., 'Aspirin 81mg'). Do not include any other text, instructions, or descriptions."

// Extractor sends images to a vision provider.
type Extractor struct {
	provider api.Provider
	model    string
	log      logger.Logger
}

// New creates an Extractor. A nil provider yields NotConfigured for every
// request.
func New(provider api.Provider, model string, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Extractor{provider: provider, model: model, log: log}
}

// Extract returns the medicine name read from image, or a placeholder.
func (e *Extractor) Extract(ctx context.Context, image []byte, mimeType string) string {
	if e == nil || e.provider == nil {
		return NotConfigured
	}
	if !strings.HasPrefix(mimeType, "image/") || len(image) == 0 {
		e.log.Warning("refusing to extract from %q (%d bytes)", mimeType, len(image))
		return Unreadable
	}

	resp, err := e.provider.SendMessage(ctx, api.MessageRequest{
		Model: e.model,
		Messages: []api.Message{{
			Role:    "user",
			Content: prompt,
			Images:  []string{base64.StdEncoding.EncodeToString(image)},
		}},
		MaxTokens:   64,
		Temperature: 0,
	})
	if err != nil {
		e.log.Error("extraction via %s failed: %v", e.provider.Name(), err)
		return Unreadable
	}

	name := strings.Trim(strings.TrimSpace(resp.Content), "\"'`")
	if name == "" {
		return Unreadable
	}
	return name
}

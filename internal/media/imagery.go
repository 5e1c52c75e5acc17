package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrNoImage is returned when the model reply carries no image part.
var ErrNoImage = errors.New("media: response contained no image")

const defaultImageModel = "gemini-2.0-flash-preview-image-generation"

type ImageConfig struct {
	APIKey string
	Model  string
}

// ImageClient generates still imagery for scene backgrounds and props.
type ImageClient struct {
	cli   *genai.Client
	model string
}

func NewImageClient(ctx context.Context, cfg ImageConfig) (*ImageClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("media: image api key is required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("media: init image client: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultImageModel
	}
	return &ImageClient{cli: cli, model: model}, nil
}

// Generate renders a prompt as an image and returns the bytes with
// their MIME type (typically image/png).
func (c *ImageClient) Generate(ctx context.Context, prompt string) ([]byte, string, error) {
	if c == nil || c.cli == nil {
		return nil, "", fmt.Errorf("media: image client is nil")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, "", fmt.Errorf("media: empty image prompt")
	}

	contents := []*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}
	cfg := &genai.GenerateContentConfig{
		// The image models refuse requests that do not also allow text.
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(time.Duration(300*(1<<attempt)) * time.Millisecond):
			}
		}
		resp, err := c.cli.Models.GenerateContent(ctx, c.model, contents, cfg)
		if err != nil {
			lastErr = err
			continue
		}
		data, mime := firstBlob(resp, "image/")
		if data == nil || !strings.HasPrefix(mime, "image/") {
			lastErr = ErrNoImage
			continue
		}
		return data, mime, nil
	}
	return nil, "", fmt.Errorf("media: generate image: %w", lastErr)
}

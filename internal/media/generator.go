package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrUnconfigured is returned when a generation backend has no client,
// usually because its API key was not set.
var ErrUnconfigured = errors.New("media: backend not configured")

// Asset describes one generated file as stored.
type Asset struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
	Key  string `json:"key"`
	MIME string `json:"mime"`
	Size int    `json:"size"`
	URL  string `json:"url,omitempty"`
}

// Generator produces narration, imagery, and sound effects for a
// project and files them under the project's asset prefix. Any of the
// three clients may be nil when the matching backend is not configured.
type Generator struct {
	speech *SpeechClient
	image  *ImageClient
	sound  *SoundClient
	store  Store
}

func NewGenerator(speech *SpeechClient, image *ImageClient, sound *SoundClient, store Store) (*Generator, error) {
	if store == nil {
		return nil, fmt.Errorf("media: generator needs an asset store")
	}
	return &Generator{speech: speech, image: image, sound: sound, store: store}, nil
}

func (g *Generator) GenerateSpeech(ctx context.Context, projectID, text, voice string) (Asset, error) {
	if g == nil || g.speech == nil {
		return Asset{}, fmt.Errorf("speech: %w", ErrUnconfigured)
	}
	data, mime, err := g.speech.Synthesize(ctx, text, voice)
	if err != nil {
		return Asset{}, err
	}
	return g.file(ctx, projectID, KindSpeech, data, mime)
}

func (g *Generator) GenerateImagery(ctx context.Context, projectID, prompt string) (Asset, error) {
	if g == nil || g.image == nil {
		return Asset{}, fmt.Errorf("imagery: %w", ErrUnconfigured)
	}
	data, mime, err := g.image.Generate(ctx, prompt)
	if err != nil {
		return Asset{}, err
	}
	return g.file(ctx, projectID, KindImagery, data, mime)
}

func (g *Generator) GenerateSound(ctx context.Context, projectID, query string) (Asset, error) {
	if g == nil || g.sound == nil {
		return Asset{}, fmt.Errorf("sound: %w", ErrUnconfigured)
	}
	data, mime, _, err := g.sound.Fetch(ctx, query)
	if err != nil {
		return Asset{}, err
	}
	return g.file(ctx, projectID, KindSound, data, mime)
}

// List returns the stored asset names of one kind for a project.
func (g *Generator) List(ctx context.Context, projectID string, kind Kind) ([]string, error) {
	return g.store.List(ctx, AssetKey(projectID, kind, ""))
}

// Open returns the stored bytes for a previously generated asset.
func (g *Generator) Open(ctx context.Context, projectID string, kind Kind, name string) ([]byte, error) {
	return g.store.Get(ctx, AssetKey(projectID, kind, name))
}

func (g *Generator) file(ctx context.Context, projectID string, kind Kind, data []byte, mime string) (Asset, error) {
	name := fmt.Sprintf("%s-%s%s", kind, uuid.NewString()[:8], extensionFor(mime))
	key := AssetKey(projectID, kind, name)
	if err := g.store.Put(ctx, key, data, mime); err != nil {
		return Asset{}, fmt.Errorf("media: store %s asset: %w", kind, err)
	}
	asset := Asset{Kind: kind, Name: name, Key: key, MIME: mime, Size: len(data)}
	if u, err := g.store.URL(ctx, key); err == nil {
		asset.URL = u
	}
	return asset, nil
}

func extensionFor(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	}
	if i := strings.LastIndex(mime, "/"); i >= 0 && i+1 < len(mime) {
		return "." + mime[i+1:]
	}
	return ".bin"
}

package media

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrNoAudio is returned when the model reply carries no audio part.
var ErrNoAudio = errors.New("media: response contained no audio")

const (
	defaultSpeechModel = "gemini-2.5-flash-preview-tts"
	defaultVoice       = "Kore"

	// Gemini TTS returns 16-bit mono PCM at 24 kHz.
	pcmSampleRate = 24000
	pcmBitDepth   = 16
	pcmChannels   = 1
)

type SpeechConfig struct {
	APIKey string
	Model  string
	Voice  string
}

// SpeechClient turns narration text into WAV audio via the Gemini
// text-to-speech models.
type SpeechClient struct {
	cli   *genai.Client
	model string
	voice string
}

func NewSpeechClient(ctx context.Context, cfg SpeechConfig) (*SpeechClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("media: speech api key is required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("media: init speech client: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultSpeechModel
	}
	voice := strings.TrimSpace(cfg.Voice)
	if voice == "" {
		voice = defaultVoice
	}
	return &SpeechClient{cli: cli, model: model, voice: voice}, nil
}

// Synthesize renders text as speech and returns the audio bytes with
// their MIME type. Raw PCM replies are wrapped in a WAV container so
// the result is directly playable in an <Audio> element.
func (c *SpeechClient) Synthesize(ctx context.Context, text, voice string) ([]byte, string, error) {
	if c == nil || c.cli == nil {
		return nil, "", fmt.Errorf("media: speech client is nil")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "", fmt.Errorf("media: empty narration text")
	}
	voice = strings.TrimSpace(voice)
	if voice == "" {
		voice = c.voice
	}

	contents := []*genai.Content{{Parts: []*genai.Part{{Text: text}}}}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
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
		data, mime := firstBlob(resp, "audio/")
		if data == nil {
			lastErr = ErrNoAudio
			continue
		}
		if isRawPCM(mime) {
			return wrapWAV(data, pcmSampleRate, pcmBitDepth, pcmChannels), "audio/wav", nil
		}
		return data, mime, nil
	}
	return nil, "", fmt.Errorf("media: synthesize speech: %w", lastErr)
}

// firstBlob returns the first inline blob whose MIME type starts with
// the given prefix, or any blob at all when the prefix never matches.
func firstBlob(resp *genai.GenerateContentResponse, mimePrefix string) ([]byte, string) {
	if resp == nil {
		return nil, ""
	}
	var fallback []byte
	var fallbackMime string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if p == nil || p.InlineData == nil || len(p.InlineData.Data) == 0 {
				continue
			}
			if strings.HasPrefix(p.InlineData.MIMEType, mimePrefix) {
				return p.InlineData.Data, p.InlineData.MIMEType
			}
			if fallback == nil {
				fallback = p.InlineData.Data
				fallbackMime = p.InlineData.MIMEType
			}
		}
	}
	return fallback, fallbackMime
}

func isRawPCM(mime string) bool {
	mime = strings.ToLower(mime)
	return strings.Contains(mime, "l16") || strings.Contains(mime, "pcm")
}

// wrapWAV prefixes PCM samples with a canonical 44-byte RIFF header.
func wrapWAV(pcm []byte, sampleRate, bitDepth, channels int) []byte {
	blockAlign := channels * bitDepth / 8
	byteRate := sampleRate * blockAlign

	out := make([]byte, 0, 44+len(pcm))
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(36+len(pcm)))
	out = append(out, "WAVE"...)
	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, 1) // PCM
	out = binary.LittleEndian.AppendUint16(out, uint16(channels))
	out = binary.LittleEndian.AppendUint32(out, uint32(sampleRate))
	out = binary.LittleEndian.AppendUint32(out, uint32(byteRate))
	out = binary.LittleEndian.AppendUint16(out, uint16(blockAlign))
	out = binary.LittleEndian.AppendUint16(out, uint16(bitDepth))
	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(pcm)))
	out = append(out, pcm...)
	return out
}

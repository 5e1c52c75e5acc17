package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"framewright/internal/cache"
)

// ErrNoMatch is returned when the sound library has nothing for a query.
var ErrNoMatch = errors.New("media: no sound matched the query")

// maxSoundBytes caps a single preview download (10 MiB).
const maxSoundBytes = 10 << 20

type SoundConfig struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// SoundClient looks up sound effects in a Freesound-compatible library
// and downloads their preview renders. Search results are cached so a
// scene that reuses one effect does not hit the API twice.
type SoundClient struct {
	base  string
	token string
	http  *http.Client
	hits  *cache.LRU[string, SoundHit]
}

// SoundHit is one search result with a downloadable preview.
type SoundHit struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	PreviewURL string `json:"preview_url"`
}

func NewSoundClient(cfg SoundConfig) (*SoundClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("media: sound api base url is required")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("media: sound api token is required")
	}
	cli := cfg.Client
	if cli == nil {
		cli = &http.Client{Timeout: 30 * time.Second}
	}
	return &SoundClient{
		base:  base,
		token: cfg.Token,
		http:  cli,
		hits:  cache.New[string, SoundHit](256, 0, 10*time.Minute),
	}, nil
}

// Search returns the best match for a free-text query.
func (c *SoundClient) Search(ctx context.Context, query string) (SoundHit, error) {
	if c == nil || c.http == nil {
		return SoundHit{}, fmt.Errorf("media: sound client is nil")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return SoundHit{}, fmt.Errorf("media: empty sound query")
	}
	if hit, ok := c.hits.Get(strings.ToLower(query)); ok {
		return hit, nil
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("page_size", "1")
	q.Set("fields", "id,name,previews")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/search/text/?"+q.Encode(), nil)
	if err != nil {
		return SoundHit{}, err
	}
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return SoundHit{}, fmt.Errorf("media: sound search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return SoundHit{}, fmt.Errorf("media: sound search returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Results []struct {
			ID       int               `json:"id"`
			Name     string            `json:"name"`
			Previews map[string]string `json:"previews"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return SoundHit{}, fmt.Errorf("media: parse sound search: %w", err)
	}
	if len(parsed.Results) == 0 {
		return SoundHit{}, ErrNoMatch
	}

	r := parsed.Results[0]
	preview := r.Previews["preview-hq-mp3"]
	if preview == "" {
		for _, u := range r.Previews {
			if u != "" {
				preview = u
				break
			}
		}
	}
	if preview == "" {
		return SoundHit{}, ErrNoMatch
	}

	hit := SoundHit{ID: r.ID, Name: r.Name, PreviewURL: preview}
	c.hits.Set(strings.ToLower(query), hit, 1)
	return hit, nil
}

// Download fetches the preview audio for a hit.
func (c *SoundClient) Download(ctx context.Context, hit SoundHit) ([]byte, string, error) {
	if strings.TrimSpace(hit.PreviewURL) == "" {
		return nil, "", fmt.Errorf("media: sound hit has no preview url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, hit.PreviewURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Token "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("media: sound download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("media: sound download returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSoundBytes))
	if err != nil {
		return nil, "", fmt.Errorf("media: read sound body: %w", err)
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" || strings.HasPrefix(mime, "application/octet-stream") {
		mime = "audio/mpeg"
	}
	return data, mime, nil
}

// Fetch searches for a query and downloads the first match.
func (c *SoundClient) Fetch(ctx context.Context, query string) ([]byte, string, SoundHit, error) {
	hit, err := c.Search(ctx, query)
	if err != nil {
		return nil, "", SoundHit{}, err
	}
	data, mime, err := c.Download(ctx, hit)
	if err != nil {
		return nil, "", SoundHit{}, err
	}
	return data, mime, hit, nil
}

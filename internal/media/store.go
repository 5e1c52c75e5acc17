// Package media generates narration, imagery, and sound effects for a
// project timeline and persists them through a pluggable asset store.
package media

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned for asset keys that do not exist.
var ErrNotFound = errors.New("media: asset not found")

// Kind tags which generator produced an asset.
type Kind string

const (
	KindSpeech  Kind = "speech"
	KindImagery Kind = "imagery"
	KindSound   Kind = "sound"
)

// Store persists generated assets. Keys are slash-separated paths in
// the form <projectID>/<kind>/<name>.
type Store interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
	URL(ctx context.Context, key string) (string, error)
}

// AssetKey builds the canonical object key for an asset.
func AssetKey(projectID string, kind Kind, name string) string {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	return strings.TrimSpace(projectID) + "/" + string(kind) + "/" + name
}

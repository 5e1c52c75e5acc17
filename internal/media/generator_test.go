package media

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

func TestGenerator_GenerateSoundStoresAsset(t *testing.T) {
	var searches atomic.Int32
	srv := soundAPI(t, &searches)
	sound := newTestSoundClient(t, srv)
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	gen, err := NewGenerator(nil, nil, sound, store)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	ctx := context.Background()

	asset, err := gen.GenerateSound(ctx, "p1", "whoosh")
	if err != nil {
		t.Fatalf("GenerateSound: %v", err)
	}
	if asset.Kind != KindSound {
		t.Errorf("kind = %q, want sound", asset.Kind)
	}
	if !strings.HasPrefix(asset.Key, "p1/sound/") || !strings.HasSuffix(asset.Key, ".mp3") {
		t.Errorf("key = %q, want p1/sound/*.mp3", asset.Key)
	}
	if asset.MIME != "audio/mpeg" || asset.Size == 0 {
		t.Errorf("asset = %+v", asset)
	}
	if !strings.HasPrefix(asset.URL, "file://") {
		t.Errorf("url = %q, want file://", asset.URL)
	}

	names, err := gen.List(ctx, "p1", KindSound)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 || names[0] != asset.Name {
		t.Fatalf("List = %v, want [%s]", names, asset.Name)
	}

	data, err := gen.Open(ctx, "p1", KindSound, asset.Name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(data) != "ID3-fake-mp3-bytes" {
		t.Fatalf("Open = %q", data)
	}
}

func TestGenerator_UnconfiguredBackends(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	gen, err := NewGenerator(nil, nil, nil, store)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	ctx := context.Background()

	if _, err := gen.GenerateSpeech(ctx, "p1", "hello", ""); !errors.Is(err, ErrUnconfigured) {
		t.Errorf("speech err = %v, want ErrUnconfigured", err)
	}
	if _, err := gen.GenerateImagery(ctx, "p1", "a sunset"); !errors.Is(err, ErrUnconfigured) {
		t.Errorf("imagery err = %v, want ErrUnconfigured", err)
	}
	if _, err := gen.GenerateSound(ctx, "p1", "whoosh"); !errors.Is(err, ErrUnconfigured) {
		t.Errorf("sound err = %v, want ErrUnconfigured", err)
	}
}

func TestGenerator_RequiresStore(t *testing.T) {
	if _, err := NewGenerator(nil, nil, nil, nil); err == nil {
		t.Fatal("nil store accepted")
	}
}

func TestExtensionFor(t *testing.T) {
	cases := map[string]string{
		"audio/wav":                ".wav",
		"audio/mpeg":               ".mp3",
		"image/png":                ".png",
		"image/jpeg":               ".jpg",
		"IMAGE/PNG":                ".png",
		"audio/wav; charset=x":     ".wav",
		"application/octet-stream": ".octet-stream",
		"garbage":                  ".bin",
		"":                         ".bin",
	}
	for mime, want := range cases {
		if got := extensionFor(mime); got != want {
			t.Errorf("extensionFor(%q) = %q, want %q", mime, got, want)
		}
	}
}

package media

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// soundAPI fakes the two endpoints the client touches: text search and
// preview download.
func soundAPI(t *testing.T, searches *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server

	mux.HandleFunc("/search/text/", func(w http.ResponseWriter, r *http.Request) {
		searches.Add(1)
		if got := r.Header.Get("Authorization"); got != "Token test-token" {
			t.Errorf("search auth header = %q", got)
		}
		query := r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		if query == "nothing" {
			fmt.Fprint(w, `{"results":[]}`)
			return
		}
		fmt.Fprintf(w, `{"results":[{"id":421,"name":"whoosh.wav","previews":{
			"preview-lq-ogg":%[1]q,
			"preview-hq-mp3":%[2]q
		}}]}`, srv.URL+"/previews/421-lq.ogg", srv.URL+"/previews/421-hq.mp3")
	})
	mux.HandleFunc("/previews/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		fmt.Fprint(w, "ID3-fake-mp3-bytes")
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestSoundClient(t *testing.T, srv *httptest.Server) *SoundClient {
	t.Helper()
	c, err := NewSoundClient(SoundConfig{BaseURL: srv.URL, Token: "test-token", Client: srv.Client()})
	if err != nil {
		t.Fatalf("NewSoundClient: %v", err)
	}
	return c
}

func TestSoundClient_SearchPrefersHQPreview(t *testing.T) {
	var searches atomic.Int32
	srv := soundAPI(t, &searches)
	c := newTestSoundClient(t, srv)

	hit, err := c.Search(context.Background(), "whoosh")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if hit.ID != 421 || hit.Name != "whoosh.wav" {
		t.Fatalf("hit = %+v", hit)
	}
	if want := srv.URL + "/previews/421-hq.mp3"; hit.PreviewURL != want {
		t.Fatalf("preview = %q, want %q", hit.PreviewURL, want)
	}
}

func TestSoundClient_SearchCachesByQuery(t *testing.T) {
	var searches atomic.Int32
	srv := soundAPI(t, &searches)
	c := newTestSoundClient(t, srv)
	ctx := context.Background()

	if _, err := c.Search(ctx, "whoosh"); err != nil {
		t.Fatalf("first Search: %v", err)
	}
	if _, err := c.Search(ctx, "  WHOOSH "); err != nil {
		t.Fatalf("second Search: %v", err)
	}
	if got := searches.Load(); got != 1 {
		t.Fatalf("api hit %d times, want 1 (case-folded cache)", got)
	}
}

func TestSoundClient_NoResultsReturnsNoMatch(t *testing.T) {
	var searches atomic.Int32
	srv := soundAPI(t, &searches)
	c := newTestSoundClient(t, srv)

	if _, err := c.Search(context.Background(), "nothing"); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("Search = %v, want ErrNoMatch", err)
	}
}

func TestSoundClient_FetchDownloadsPreview(t *testing.T) {
	var searches atomic.Int32
	srv := soundAPI(t, &searches)
	c := newTestSoundClient(t, srv)

	data, mime, hit, err := c.Fetch(context.Background(), "whoosh")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "ID3-fake-mp3-bytes" {
		t.Fatalf("data = %q", data)
	}
	if mime != "audio/mpeg" {
		t.Fatalf("mime = %q, want audio/mpeg", mime)
	}
	if hit.ID != 421 {
		t.Fatalf("hit id = %d, want 421", hit.ID)
	}
}

func TestSoundClient_RejectsEmptyConfig(t *testing.T) {
	if _, err := NewSoundClient(SoundConfig{Token: "t"}); err == nil {
		t.Error("missing base url accepted")
	}
	if _, err := NewSoundClient(SoundConfig{BaseURL: "https://example.test"}); err == nil {
		t.Error("missing token accepted")
	}
}

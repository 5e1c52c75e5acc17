package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postJSON(t *testing.T, fn http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHandleConvert_RewritesSource(t *testing.T) {
	h := NewConvertHandler()
	src := `import { useState, useEffect } from 'react';

export default function Counter() {
  const [n, setN] = useState(0);
  useEffect(() => {
    const t = setInterval(() => setN((v) => v + 1), 50);
    return () => clearInterval(t);
  }, []);
  return <div>{n}</div>;
}
`
	rec := postJSON(t, h.HandleConvert, "/v1/convert", map[string]any{"source": src})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	code, _ := out["code"].(string)
	if !strings.Contains(code, "useCurrentFrame") {
		t.Fatalf("converted code should read the frame:\n%s", code)
	}
	if out["component_name"] != "Counter" {
		t.Fatalf("component_name = %v", out["component_name"])
	}
}

func TestHandleConvert_RequiresSource(t *testing.T) {
	h := NewConvertHandler()
	rec := postJSON(t, h.HandleConvert, "/v1/convert", map[string]any{"source": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleConvert_MethodNotAllowed(t *testing.T) {
	h := NewConvertHandler()
	req := httptest.NewRequest(http.MethodGet, "/v1/convert", nil)
	rec := httptest.NewRecorder()
	h.HandleConvert(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestHandleConvert_UnparseableSourceIs422(t *testing.T) {
	h := NewConvertHandler()
	rec := postJSON(t, h.HandleConvert, "/v1/convert", map[string]any{
		"source": "const a = `never closed\n",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	out := decodeBody(t, rec)
	errObj, _ := out["error"].(map[string]any)
	if errObj["code"] != "unconvertible" {
		t.Fatalf("error code = %v", errObj["code"])
	}
}

func TestHandleConvert_CachesByContentHash(t *testing.T) {
	h := NewConvertHandler()
	src := `export default function Box() { return <div/>; }`

	key := convertCacheKey(src, 0)
	if _, ok := h.cache.Get(key); ok {
		t.Fatal("cache should start empty")
	}

	first := postJSON(t, h.HandleConvert, "/v1/convert", map[string]any{"source": src})
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d", first.Code)
	}
	if _, ok := h.cache.Get(key); !ok {
		t.Fatal("conversion result should be cached")
	}

	second := postJSON(t, h.HandleConvert, "/v1/convert", map[string]any{"source": src})
	if second.Body.String() != first.Body.String() {
		t.Fatalf("cached response differs:\n%s\nvs\n%s", first.Body.String(), second.Body.String())
	}

	// A different fps is a different cache entry.
	if _, ok := h.cache.Get(convertCacheKey(src, 60)); ok {
		t.Fatal("fps must be part of the cache key")
	}
}

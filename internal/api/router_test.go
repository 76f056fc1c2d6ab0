package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumipallolabs/walletmap/internal/api/handlers"
	"github.com/lumipallolabs/walletmap/internal/render"
	"github.com/lumipallolabs/walletmap/internal/store"
)

const sampleTree = `{"type":"root","children":[
	{"type":"leaf","value":5,"chain":"Ethereum","address":"aaa","logoUrl":"https://logos/a.png"},
	{"type":"leaf","value":50,"chain":"Polygon","address":"bbb","logoUrl":"https://logos/b.png"}
]}`

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	db, err := store.NewPebbleDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRouter(store.NewSnapshotStore(db), Options{
		Chart: render.DefaultOptions(),
		Size:  handlers.Size{Width: 500, Height: 500},
	})
}

func do(r *Router, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRenderEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/v1/render?width=500&height=500", sampleTree)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, `href="https://polygonscan.com/address/0xbbb"`)
	assert.NotContains(t, body, `data-address="aaa"`)
}

func TestRenderYAMLBody(t *testing.T) {
	r := newTestRouter(t)
	yamlTree := "type: root\nchildren:\n  - type: leaf\n    value: 20\n    chain: Ethereum\n    address: ccc\n"

	w := do(r, http.MethodPost, "/api/v1/render?format=yaml", yamlTree)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `href="https://etherscan.io/address/0xccc"`)
}

func TestRenderRejectsBadInput(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"zero width", "/api/v1/render?width=0", sampleTree, http.StatusBadRequest},
		{"huge height", "/api/v1/render?height=20000", sampleTree, http.StatusBadRequest},
		{"non-numeric width", "/api/v1/render?width=wide", sampleTree, http.StatusBadRequest},
		{"NaN width", "/api/v1/render?width=NaN&height=500", sampleTree, http.StatusBadRequest},
		{"infinite height", "/api/v1/render?width=500&height=Inf", sampleTree, http.StatusBadRequest},
		{"empty body", "/api/v1/render", "", http.StatusBadRequest},
		{"malformed json", "/api/v1/render", `{"type":`, http.StatusBadRequest},
		{"binary body", "/api/v1/render", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestRenderInlinesOnlyLogoDir(t *testing.T) {
	base := t.TempDir()
	logoDir := filepath.Join(base, "logos")
	require.NoError(t, os.Mkdir(logoDir, 0755))
	png, err := base64.StdEncoding.DecodeString("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(logoDir, "eth.png"), png, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "secret.png"), png, 0644))

	db, err := store.NewPebbleDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	r := NewRouter(store.NewSnapshotStore(db), Options{
		Chart:   render.DefaultOptions(),
		Size:    handlers.Size{Width: 500, Height: 500},
		LogoDir: logoDir,
	})

	w := do(r, http.MethodPost, "/api/v1/render", `{"type":"root","children":[
		{"type":"leaf","value":50,"chain":"Ethereum","address":"aaa","logoUrl":"eth.png"},
		{"type":"leaf","value":50,"chain":"Ethereum","address":"bbb","logoUrl":"../secret.png"}
	]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	assert.Equal(t, 1, strings.Count(body, `href="data:image/png;base64,`))
	assert.Contains(t, body, `href="../secret.png"`)
}

func TestTreeLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/v1/trees/main", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPut, "/api/v1/trees/main", sampleTree)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var meta store.Meta
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, "main", meta.Name)
	assert.Equal(t, 2, meta.Leaves)
	assert.Equal(t, 55.0, meta.Total)

	w = do(r, http.MethodGet, "/api/v1/trees", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"main"`)

	w = do(r, http.MethodGet, "/api/v1/trees/main", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"address":"bbb"`)

	w = do(r, http.MethodGet, "/api/v1/trees/main/svg?width=400&height=300", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="300"`))

	w = do(r, http.MethodGet, "/api/v1/trees/main/leaves", "")
	require.Equal(t, http.StatusOK, w.Code)
	var scene render.Scene
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scene))
	require.Len(t, scene.Leaves, 1)
	assert.Equal(t, "https://polygonscan.com/address/0xbbb", scene.Leaves[0].Href)
	assert.Equal(t, 500.0, scene.Width)

	w = do(r, http.MethodDelete, "/api/v1/trees/main", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/api/v1/trees/main/svg", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(r, http.MethodDelete, "/api/v1/trees/main", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutReplacesCachedChart(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(r, http.MethodPut, "/api/v1/trees/main", sampleTree).Code)

	w := do(r, http.MethodGet, "/api/v1/trees/main/leaves", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"address":"bbb"`)

	replacement := `{"type":"root","children":[{"type":"leaf","value":30,"chain":"Ethereum","address":"ddd"}]}`
	require.Equal(t, http.StatusOK, do(r, http.MethodPut, "/api/v1/trees/main", replacement).Code)

	w = do(r, http.MethodGet, "/api/v1/trees/main/leaves", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"address":"ddd"`)
	assert.NotContains(t, w.Body.String(), `"address":"bbb"`)
}

func TestDiff(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(r, http.MethodPut, "/api/v1/trees/may", sampleTree).Code)

	june := `{"type":"root","children":[
		{"type":"leaf","value":50,"chain":"Polygon","address":"bbb"},
		{"type":"leaf","value":12,"chain":"Ethereum","address":"ccc"}
	]}`
	require.Equal(t, http.StatusOK, do(r, http.MethodPut, "/api/v1/trees/june", june).Code)

	w := do(r, http.MethodGet, "/api/v1/trees/june/diff/may", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{
		"base": "may",
		"name": "june",
		"summary": "1 added, 1 removed",
		"changes": [
			{"chain":"Ethereum","address":"aaa","kind":"removed","prev":5,"curr":0},
			{"chain":"Ethereum","address":"ccc","kind":"added","prev":0,"curr":12}
		]
	}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/v1/trees/may/diff/may", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"changes":[]`)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/trees/june/diff/april", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/trees/april/diff/may", "").Code)
}

func TestInvalidTreeName(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPut, "/api/v1/trees/bad%20name", sampleTree)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPage(t *testing.T) {
	r := newTestRouter(t)
	require.Equal(t, http.StatusOK, do(r, http.MethodPut, "/api/v1/trees/main", sampleTree).Code)

	w := do(r, http.MethodGet, "/trees/main?width=640&height=480", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.Contains(t, body, "<title>main · walletmap</title>")
	assert.Contains(t, body, "1 wallets, total 50.00")
	assert.Contains(t, body, `<svg xmlns="http://www.w3.org/2000/svg" width="640" height="480"`)
	assert.Contains(t, body, `href="https://polygonscan.com/address/0xbbb"`)
}

func TestCORSPreflight(t *testing.T) {
	w := do(newTestRouter(t), http.MethodOptions, "/api/v1/render", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetrics(t *testing.T) {
	r := newTestRouter(t)
	do(r, http.MethodPost, "/api/v1/render", sampleTree)

	w := do(r, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "walletmap_http_requests_total")
	assert.Contains(t, w.Body.String(), "walletmap_render_cache_lookups_total")
}

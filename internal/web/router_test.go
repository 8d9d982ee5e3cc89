// ABOUTME: Tests for the HTTP surface
// ABOUTME: Exercises probes, the search API, static assets and MCP mounting with httptest
package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/oracle/internal/card"
	"github.com/harper/oracle/internal/gateway"
	"github.com/harper/oracle/internal/scryfall"
)

type fakeCards struct {
	list     card.List
	err      error
	lastPage int
}

func (f *fakeCards) Search(ctx context.Context, query string, page int) (card.List, error) {
	f.lastPage = page
	return f.list, f.err
}

type fakeDB struct {
	connected bool
	healthy   bool
}

func (f *fakeDB) IsConnected() bool                       { return f.connected }
func (f *fakeDB) TestConnection(ctx context.Context) bool { return f.healthy }
func (f *fakeDB) Readiness() gateway.Readiness            { return gateway.ReadinessLenient }

func newRouter(t *testing.T, cards *fakeCards, db *fakeDB, staticDir string) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := NewRouter(Options{
		MCP:       mcp.NewServer(&mcp.Implementation{Name: "test", Version: "v0.0.1"}, nil),
		Cards:     cards,
		DB:        db,
		StaticDir: staticDir,
		Logger:    log.New(io.Discard),
	})
	require.NoError(t, err)
	return router
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestProbes(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		w := get(t, newRouter(t, &fakeCards{}, &fakeDB{}, ""), "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decode(t, w)["status"])
	})

	t.Run("ready without database", func(t *testing.T) {
		w := get(t, newRouter(t, &fakeCards{}, &fakeDB{}, ""), "/ready")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "disconnected", decode(t, w)["database"])
	})

	t.Run("ready with healthy database", func(t *testing.T) {
		w := get(t, newRouter(t, &fakeCards{}, &fakeDB{connected: true, healthy: true}, ""), "/ready")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decode(t, w)["database"])
	})

	t.Run("not ready when probe fails", func(t *testing.T) {
		w := get(t, newRouter(t, &fakeCards{}, &fakeDB{connected: true}, ""), "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "not_ready", decode(t, w)["status"])
	})
}

func TestSearchAPI(t *testing.T) {
	bolt := card.Card{
		ID: "e3285e6b-3e79-4d7c-bf96-d920f973b80c", Name: "Lightning Bolt", Set: "m10", SetName: "Magic 2010",
		CollectorNumber: "146", TypeLine: "Instant", ManaCost: "{R}",
		ImageURIs: &card.ImageURIs{Normal: "https://cards.scryfall.io/normal/bolt.jpg"},
	}

	t.Run("returns card views", func(t *testing.T) {
		cards := &fakeCards{list: card.List{TotalCards: 1, Data: []card.Card{bolt}}}
		w := get(t, newRouter(t, cards, &fakeDB{}, ""), "/api/search?q=bolt&page=2")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, cards.lastPage)

		var body struct {
			TotalCards int        `json:"total_cards"`
			Cards      []CardView `json:"cards"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Cards, 1)
		assert.Equal(t, "https://cards.scryfall.io/normal/bolt.jpg", body.Cards[0].Image)
		assert.Equal(t, "https://scryfall.com/card/m10/146", body.Cards[0].Permalink)
	})

	t.Run("requires q", func(t *testing.T) {
		w := get(t, newRouter(t, &fakeCards{}, &fakeDB{}, ""), "/api/search")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no matches is an empty page", func(t *testing.T) {
		cards := &fakeCards{err: &scryfall.APIError{Status: 404, Code: "not_found"}}
		w := get(t, newRouter(t, cards, &fakeDB{}, ""), "/api/search?q=zzzz")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 0, decode(t, w)["total_cards"])
	})

	t.Run("provider failure", func(t *testing.T) {
		cards := &fakeCards{err: &scryfall.APIError{Status: 500}}
		w := get(t, newRouter(t, cards, &fakeDB{}, ""), "/api/search?q=bolt")
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("unknown api path", func(t *testing.T) {
		w := get(t, newRouter(t, &fakeCards{}, &fakeDB{}, ""), "/api/nope")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStaticAssets(t *testing.T) {
	t.Run("embedded index", func(t *testing.T) {
		w := get(t, newRouter(t, &fakeCards{}, &fakeDB{}, ""), "/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<title>Oracle</title>")
	})

	t.Run("static dir override", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<p>custom</p>"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

		h := newRouter(t, &fakeCards{}, &fakeDB{}, dir)
		assert.Contains(t, get(t, h, "/").Body.String(), "custom")
		assert.Equal(t, http.StatusOK, get(t, h, "/app.js").Code)
		assert.Equal(t, http.StatusNotFound, get(t, h, "/missing.css").Code)
	})

	t.Run("missing static dir fails", func(t *testing.T) {
		_, err := NewRouter(Options{StaticDir: filepath.Join(t.TempDir(), "nope"), DB: &fakeDB{}})
		assert.Error(t, err)
	})
}

func TestMCPMounted(t *testing.T) {
	h := newRouter(t, &fakeCards{}, &fakeDB{}, "")

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"test","version":"1"}}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"serverInfo"`)
}

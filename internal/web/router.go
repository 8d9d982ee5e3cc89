// ABOUTME: HTTP surface for oracle built on gin
// ABOUTME: MCP streamable HTTP and SSE transports, health probes, card search API and static assets
package web

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/oracle/internal/card"
	"github.com/harper/oracle/internal/gateway"
	"github.com/harper/oracle/internal/scryfall"
)

//go:embed static
var embedded embed.FS

// ReadyTimeout bounds the database probe behind /ready.
const ReadyTimeout = 5 * time.Second

// CardSearcher runs Scryfall searches for the browser page.
type CardSearcher interface {
	Search(ctx context.Context, query string, page int) (card.List, error)
}

// Database is the gateway view needed by the probes.
type Database interface {
	IsConnected() bool
	TestConnection(ctx context.Context) bool
	Readiness() gateway.Readiness
}

// Options wires the router's dependencies.
type Options struct {
	MCP       *mcp.Server
	Cards     CardSearcher
	DB        Database
	StaticDir string
	Logger    *log.Logger
}

// Handler serves the card search API.
type Handler struct {
	cards  CardSearcher
	db     Database
	logger *log.Logger
}

// NewRouter builds the gin engine for the serve command.
func NewRouter(opts Options) (*gin.Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	static, err := staticFS(opts.StaticDir)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	getServer := func(*http.Request) *mcp.Server { return opts.MCP }

	streamable := mcp.NewStreamableHTTPHandler(getServer, &mcp.StreamableHTTPOptions{Stateless: true})
	router.Any("/mcp", gin.WrapH(streamable))

	sse := mcp.NewSSEHandler(getServer, nil)
	router.Any("/sse", gin.WrapH(sse))
	router.Any("/sse/message", gin.WrapH(sse))

	h := &Handler{cards: opts.Cards, db: opts.DB, logger: logger}
	router.GET("/health", h.health)
	router.GET("/ready", h.ready)
	h.RegisterRoutes(router.Group("/api"))

	files := http.FileServer(http.FS(static))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.String(http.StatusNotFound, "Not Found")
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})

	return router, nil
}

// RegisterRoutes mounts the JSON API.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.search) // GET /api/search?q=&page=
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": h.db.IsConnected(),
	})
}

func (h *Handler) ready(c *gin.Context) {
	if !h.db.IsConnected() {
		// The card tools work without a database.
		c.JSON(http.StatusOK, gin.H{"status": "ready", "database": "disconnected"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ReadyTimeout)
	defer cancel()

	if !h.db.TestConnection(ctx) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not_ready",
			"database":  "not_responding",
			"readiness": h.db.Readiness(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "database": "ok"})
}

// CardView is one search hit rendered by the browser page.
type CardView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SetName   string `json:"set_name"`
	TypeLine  string `json:"type_line"`
	ManaCost  string `json:"mana_cost,omitempty"`
	Image     string `json:"image,omitempty"`
	Permalink string `json:"permalink"`
}

func (h *Handler) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	page := parseInt(c.Query("page"), 1)
	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be at least 1"})
		return
	}

	list, err := h.cards.Search(c.Request.Context(), q, page)
	if scryfall.IsNotFound(err) {
		c.JSON(http.StatusOK, gin.H{"total_cards": 0, "has_more": false, "page": page, "cards": []CardView{}})
		return
	}
	if err != nil {
		h.logger.Warn("api search failed", "q", q, "err", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	cards := make([]CardView, 0, len(list.Data))
	for _, cd := range list.Data {
		cards = append(cards, CardView{
			ID:        cd.ID,
			Name:      cd.Name,
			SetName:   cd.SetName,
			TypeLine:  cd.TypeLine,
			ManaCost:  cd.ManaCost,
			Image:     cd.ImageURL(),
			Permalink: scryfall.Permalink(cd),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_cards": list.TotalCards,
		"has_more":    list.HasMore,
		"page":        page,
		"cards":       cards,
	})
}

func staticFS(dir string) (fs.FS, error) {
	if dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
		return os.DirFS(dir), nil
	}
	return fs.Sub(embedded, "static")
}

func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

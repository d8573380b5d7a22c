package cli

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"ragbench/internal/adapter/loader"
	"ragbench/internal/domain"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the workbench over an HTTP API",
	Long: `Start an HTTP server with endpoints for indexing, retrieval and grounded
question answering.

Endpoints:
  GET  /health
  GET  /api/stats
  POST /api/index   {"path": "./docs"}
  POST /api/query   {"query": "...", "strategy": "hyde", "top_k": 4}
  POST /api/ask     {"query": "...", "strategy": "self-rag", "top_k": 4}
  POST /api/clear`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

type indexRequest struct {
	Path string `json:"path" binding:"required"`
}

type retrieveRequest struct {
	Query    string `json:"query" binding:"required"`
	Strategy string `json:"strategy"`
	TopK     int    `json:"top_k"`
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cfg, rootDir)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := cfg.Serve.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "ragbench",
		})
	})

	api := router.Group("/api")
	{
		api.GET("/stats", func(c *gin.Context) {
			stats, err := a.workbench.Stats()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, stats)
		})

		api.POST("/index", func(c *gin.Context) {
			var req indexRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
				return
			}

			l := loader.NewFSLoader(cfg.Ingest.Includes, cfg.Ingest.Excludes, cfg.Ingest.MaxChars)
			docs, err := l.Load(req.Path)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if err := a.workbench.Index(docs); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"indexed": len(docs)})
		})

		api.POST("/query", func(c *gin.Context) {
			req, ok := bindRetrieve(c)
			if !ok {
				return
			}
			docs, err := a.workbench.Retrieve(req.Strategy, req.Query, req.TopK, nil)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"documents": documentsPayload(docs)})
		})

		api.POST("/ask", func(c *gin.Context) {
			req, ok := bindRetrieve(c)
			if !ok {
				return
			}
			answer, err := a.workbench.Ask(req.Strategy, req.Query, req.TopK)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, answer)
		})

		api.POST("/clear", func(c *gin.Context) {
			if err := a.workbench.Clear(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"cleared": true})
		})
	}

	log.Printf("ragbench API listening on %s", addr)
	if err := router.Run(addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// bindRetrieve parses a retrieval request and fills config defaults.
func bindRetrieve(c *gin.Context) (retrieveRequest, bool) {
	var req retrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return req, false
	}
	if req.Strategy == "" {
		req.Strategy = cfg.Retrieve.Strategy
	}
	if req.TopK <= 0 {
		req.TopK = cfg.Retrieve.TopK
	}
	return req, true
}

func documentsPayload(docs []domain.Document) []gin.H {
	out := make([]gin.H, 0, len(docs))
	for _, d := range docs {
		item := gin.H{
			"text":   d.Text,
			"source": d.Source(),
		}
		for _, key := range []string{domain.MetaStrategy, domain.MetaRerankScore, domain.MetaFinalQuery} {
			if v, ok := d.Metadata[key]; ok {
				item[key] = v
			}
		}
		out = append(out, item)
	}
	return out
}

package http

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	uploadsCacheControl = "public, max-age=31536000"
	buildMissingMessage = "Build files not found. Please run npm run build first."
)

// RouterConfig holds the non-API knobs of the HTTP surface.
type RouterConfig struct {
	// StaticDir is the built client bundle; empty disables client serving.
	StaticDir string
}

// NewRouter wires every endpoint, the uploads directory and the client fallback.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/auth/login", h.Login)

		quizzes := api.Group("/quizzes")
		{
			quizzes.POST("/create", h.CreateQuiz)
			quizzes.GET("/code/:code", h.GetQuizByCode)
			quizzes.GET("/id/:id", h.GetQuizByID)
			quizzes.GET("", h.ListQuizzes)
		}

		api.POST("/participants/join", h.JoinQuiz)
		api.GET("/participants/:id", h.GetParticipant)

		api.POST("/responses/submit", h.SubmitResponse)
		api.GET("/responses/participant/:participantId", h.ParticipantResponses)

		api.GET("/results/:quizId/:participantId", h.Results)
		api.GET("/leaderboard/:quizId", h.Leaderboard)

		api.POST("/feedback", h.SubmitFeedback)
		api.GET("/feedback", h.ListFeedback)

		api.POST("/upload/image", h.UploadImage)
		api.GET("/uploads/list", h.ListUploads)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC().Format(time.RFC3339Nano)})
	})

	uploads := router.Group("/uploads", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Cache-Control", uploadsCacheControl)
	})
	uploads.Static("/", h.images.Dir())

	router.NoRoute(clientFallback(cfg.StaticDir))
	return router
}

// corsMiddleware lets the client bundle call the API from any origin.
func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	})
}

// clientFallback serves files of the client bundle and falls back to its
// index.html for any other non-API GET, so client-side routes survive reloads.
func clientFallback(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqPath := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || strings.HasPrefix(reqPath, "/api/") || strings.HasPrefix(reqPath, "/uploads/") {
			c.Header("Cache-Control", "no-store")
			c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
			return
		}
		if staticDir == "" {
			c.String(http.StatusNotFound, buildMissingMessage)
			return
		}

		asset := filepath.Join(staticDir, filepath.FromSlash(path.Clean("/"+reqPath)))
		if info, err := os.Stat(asset); err == nil && !info.IsDir() {
			c.File(asset)
			return
		}
		index := filepath.Join(staticDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			c.String(http.StatusNotFound, buildMissingMessage)
			return
		}
		c.File(index)
	}
}

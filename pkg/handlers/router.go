package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"site-cms/pkg/config"
)

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(cfg *config.Config, store ArticleStore, passwords PasswordVerifier, logger *slog.Logger) *gin.Engine {
	h := NewHandler(store, passwords, cfg, logger)
	wrap := func(fn HandlerFunc) gin.HandlerFunc {
		return Wrap(logger, cfg.IsProduction(), fn)
	}

	r := gin.New()
	r.Use(RequestLogger(logger), gin.Recovery())

	cookieStore := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	cookieStore.Options(sessionOptions(cfg))
	r.Use(sessions.Sessions(cfg.Admin.CookieName, cookieStore))

	r.GET("/sitemap.xml", h.Sitemap)

	api := r.Group("/api")
	{
		api.GET("/site", wrap(h.Site))

		admin := api.Group("/admin")
		admin.POST("/login", wrap(h.Login))
		admin.POST("/logout", wrap(h.Logout))

		authorized := admin.Group("/articles")
		authorized.Use(AuthRequired)
		{
			authorized.GET("", wrap(h.ListArticles))
			authorized.POST("", wrap(h.CreateArticle))
			authorized.GET("/:id", wrap(h.EditArticle))
			authorized.PUT("/:id", wrap(h.UpdateArticle))
			authorized.DELETE("/:id", wrap(h.DeleteArticle))
		}

		public := api.Group("/:locale")
		public.Use(h.RequireLocale)
		{
			public.GET("/articles", wrap(h.PublishedArticles))
			public.GET("/articles/:slug", wrap(h.PublishedArticle))
			public.GET("/categories", wrap(h.Categories))
			public.GET("/tags", wrap(h.Tags))
			public.GET("/search", wrap(h.Search))
		}
	}

	return r
}

// RequestLogger logs one line per request once the response is written.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		}
		switch {
		case status >= 500:
			logger.Error("request completed", attrs...)
		case status >= 400:
			logger.Warn("request completed", attrs...)
		default:
			logger.Info("request completed", attrs...)
		}
	}
}

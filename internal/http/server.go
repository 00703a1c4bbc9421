// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"jeeny/internal/http/handlers"
	"jeeny/internal/http/middleware"
)

type ServerDeps struct {
	Chat      handlers.ChatService
	Quotes    handlers.QuoteService
	Locations handlers.LocationService
	// Usage is optional; nil disables the per-session chat quota.
	Usage handlers.UsageGuard
	// AllowedOrigins for browser clients; empty or "*" allows any origin.
	AllowedOrigins []string
	Log            logrus.FieldLogger
}

type Server struct {
	chat      *handlers.ChatHandler
	quotes    *handlers.QuoteHandler
	locations *handlers.LocationHandler
	origins   []string
	log       logrus.FieldLogger
}

func NewServer(deps ServerDeps) *Server {
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	return &Server{
		chat:      handlers.NewChatHandler(deps.Chat, deps.Usage),
		quotes:    handlers.NewQuoteHandler(deps.Quotes, deps.Locations, deps.Log),
		locations: handlers.NewLocationHandler(deps.Locations),
		origins:   deps.AllowedOrigins,
		log:       deps.Log,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Recovery(s.log), middleware.Logging(s.log), middleware.Metrics())
	r.Use(cors.New(s.corsConfig()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/chat", s.chat.Chat)
		api.POST("/quotes", s.quotes.Create)
		api.POST("/drivers", s.quotes.Driver)
		api.GET("/places", s.locations.List)
		api.POST("/places", s.locations.Save)
	}
	return r
}

func (s *Server) corsConfig() cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	config.AllowAllOrigins = len(s.origins) == 0
	for _, origin := range s.origins {
		if origin == "*" {
			config.AllowAllOrigins = true
		}
	}
	if !config.AllowAllOrigins {
		config.AllowOrigins = s.origins
	}
	return config
}

package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirelobby/internal/config"
	"github.com/vovakirdan/wirelobby/internal/core"
)

// NewServer builds the HTTP server. /ws is served straight from the mux since
// gin's response writer never flushes the 101 status before a hijack; /health
// and /api go through the gin engine.
func NewServer(hub core.Hub, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), LoggerMiddleware(logger))

	engine.GET("/health", healthHandler)

	rooms := NewRoomHandlers(hub, logger)
	api := engine.Group("/api")
	api.GET("/rooms", rooms.ListRooms)
	api.GET("/rooms/:name", rooms.GetRoom)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg, logger))
	mux.Handle("/", engine)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

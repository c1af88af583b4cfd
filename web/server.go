package web

import (
	"context"
	"net/http"

	"github.com/Namenomeaning/chemistry-chatbot/config"
	"github.com/Namenomeaning/chemistry-chatbot/pipeline"
	"github.com/Namenomeaning/chemistry-chatbot/web/handlers"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
	config *config.Config
}

func NewServer(p *pipeline.Pipeline, logger *zap.Logger, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		router: router,
		logger: logger,
		config: cfg,
	}

	chatHandler := handlers.NewChatHandler(p, logger)
	router.POST("/chat", chatHandler.Chat)
	router.GET("/healthz", chatHandler.Health)

	return server
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	return srv.Shutdown(context.Background())
}

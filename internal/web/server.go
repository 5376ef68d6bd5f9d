package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vitos/case_index/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router        *http.ServeMux
	server        *http.Server
	marketService *usecase.MarketService
	upgrader      websocket.Upgrader
	debounce      time.Duration
	startedAt     time.Time
	logger        *zap.Logger
}

func NewServer(
	port int,
	marketService *usecase.MarketService,
	debounce time.Duration,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:        http.NewServeMux(),
		marketService: marketService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		debounce:  debounce,
		startedAt: time.Now(),
		logger:    logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	// Pages
	s.router.HandleFunc("GET /{$}", s.handleHome)
	s.router.HandleFunc("GET /item/{itemId}", s.handleItem)

	// JSON
	s.router.HandleFunc("GET /api/search", s.handleSearchJSON)
	s.router.HandleFunc("GET /api/items/{itemId}", s.handleItemJSON)
	s.router.HandleFunc("GET /api/items/{itemId}/chart", s.handleChartJSON)

	// Live search
	s.router.HandleFunc("GET /ws/search", s.handleSearchSocket)

	// Health
	s.router.HandleFunc("GET /healthz", s.handleHealth)

	// Everything else
	s.router.HandleFunc("/", s.handleNotFound)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

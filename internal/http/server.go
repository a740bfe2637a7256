package http

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"moff.io/dapp-demo/internal/config"
	"moff.io/dapp-demo/internal/panels"
	"moff.io/dapp-demo/internal/wallet"
	"moff.io/dapp-demo/pkg/errors"
	"moff.io/dapp-demo/pkg/log"
	"moff.io/dapp-demo/pkg/log/middleware"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP and websocket shell around the wallet session and the
// demo panels.
type Server struct {
	addr           string
	requestTimeout time.Duration

	session   *wallet.Session
	registrar *panels.Registrar
	uploader  *panels.Uploader
	registry  *panels.Registry

	engine   *gin.Engine
	upgrader websocket.Upgrader

	mu      sync.Mutex
	srv     *http.Server
	closing chan struct{}
}

func NewServer(cfg config.Server, session *wallet.Session, registrar *panels.Registrar,
	uploader *panels.Uploader, registry *panels.Registry) *Server {
	s := &Server{
		addr:           cfg.Addr,
		requestTimeout: cfg.RequestTimeout,
		session:        session,
		registrar:      registrar,
		uploader:       uploader,
		registry:       registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		closing: make(chan struct{}),
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RecoveredHTTPLog())

	// Streams and wallet pairing manage their own deadlines.
	router.GET("/wallet/stream", s.streamWallet)
	router.POST("/wallet/connect", s.connectWallet)
	router.POST("/documents", s.uploadDocument)

	api := router.Group("/", middleware.TimeoutHTTP(s.requestTimeout))
	api.GET("/wallet", s.getWallet)
	api.POST("/wallet/disconnect", s.disconnectWallet)
	api.GET("/chains/:id", s.getChain)
	api.POST("/register", s.register)
	api.POST("/registry/check", s.checkRegistry)
	return router
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.addr)
	}
	srv := &http.Server{Handler: s.engine}
	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Error(errors.WrapAndReport(err, "serve http"))
		}
	}()
	log.Infof("http server listening on %s", ln.Addr())
	return nil
}

// Stop ends open streams and shuts the server down gracefully.
func (s *Server) Stop() {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	select {
	case <-s.closing:
	default:
		close(s.closing)
	}
	s.mu.Unlock()
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("http server shutdown: %v", err)
	}
}

func badRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"code": 4000,
		"msg":  err.Error(),
	})
}

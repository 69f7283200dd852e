package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/photon-storage/go-common/log"

	"github.com/varunguleriaCodes/DeWebStatus/api/service"
)

// Server defines an instance of a server that handles the requests of
// validators and the dashboard.
type Server struct {
	port   int
	engine *gin.Engine
	srv    *http.Server
}

// New returns a new instance of the server. Metrics of gatherer are
// exposed on /metrics when it is not nil.
func New(port int, service *service.Service, gatherer prometheus.Gatherer) *Server {
	registerValidations()

	server := &Server{
		port:   port,
		engine: gin.Default(),
	}

	server.registerRouter(service, gatherer)
	return server
}

func (s *Server) registerRouter(service *service.Service, gatherer prometheus.Gatherer) {
	if gatherer != nil {
		s.engine.GET("metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	s.engine.Use(handleError())
	g := s.engine.Group("api/v1")

	g.GET("ping", s.handle(service.Ping))

	g.POST("ticks", s.handle(service.RecordTick))

	g.POST("validators", s.handle(service.RegisterValidator))
	g.GET("validators/:id", s.handle(service.Validator))
	g.GET("validators/:id/intents", s.handle(service.ValidatorIntents))
	g.POST("validators/:id/settle", s.handle(service.Settle))

	g.GET("intents/:id", s.handle(service.Intent))

	g.GET("websites", s.handle(service.Websites))
	g.GET("websites/:id/status", s.handle(service.WebsiteStatus))
	g.GET("websites/:id/ticks", s.handle(service.WebsiteTicks))
}

// Handler returns the http handler of the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run the server until Shutdown is called.
func (s *Server) Run() error {
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.engine,
	}

	log.Info("api server listening", "port", s.port)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown stops accepting requests and waits for the running ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}

	return s.srv.Shutdown(ctx)
}

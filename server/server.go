// Package server exposes the synchronizer over HTTP. It only maps outcomes
// to responses; all decision logic lives in the syncer package.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wows-tools/wows-clan-sync/events"
	"github.com/wows-tools/wows-clan-sync/syncer"
)

type Server struct {
	router *gin.Engine
	sync   *syncer.Syncer
	pool   *events.Pool
	logger *zap.SugaredLogger
}

func New(sync *syncer.Syncer, pool *events.Pool, logger *zap.SugaredLogger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		router: gin.New(),
		sync:   sync,
		pool:   pool,
		logger: logger,
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.PUT("/clans/:tag", s.addClan)
	s.router.DELETE("/clans/:tag", s.removeClan)
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) addClan(c *gin.Context) {
	tag := c.Param("tag")
	pub, err := s.acquire(c)
	if err != nil {
		return
	}
	defer pub.Release()

	outcome, err := s.sync.Add(c.Request.Context(), pub, tag)
	switch {
	case errors.Is(err, syncer.ErrClanNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"detail": fmt.Sprintf("Clan [%s] could not be added. Unable to find this clan in the API.", tag),
		})
	case err != nil:
		s.logger.Errorf("add clan [%s]: %s", tag, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "dependency failure"})
	case outcome == syncer.Created:
		c.Status(http.StatusCreated)
	default:
		c.Status(http.StatusOK)
	}
}

func (s *Server) removeClan(c *gin.Context) {
	tag := c.Param("tag")
	pub, err := s.acquire(c)
	if err != nil {
		return
	}
	defer pub.Release()

	_, err = s.sync.Remove(c.Request.Context(), pub, tag)
	switch {
	case errors.Is(err, syncer.ErrClanNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"detail": fmt.Sprintf("Clan [%s] could not be removed. Unable to find this clan in the API.", tag),
		})
	case err != nil:
		s.logger.Errorf("remove clan [%s]: %s", tag, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "dependency failure"})
	default:
		c.Status(http.StatusOK)
	}
}

// acquire fetches a publisher handle for the request, answering 500 itself
// when the bus is unreachable.
func (s *Server) acquire(c *gin.Context) (*events.Conn, error) {
	pub, err := s.pool.Acquire(c.Request.Context())
	if err != nil {
		s.logger.Errorf("acquiring event bus connection: %s", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "event bus unavailable"})
		return nil, err
	}
	return pub, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Run(addr string) error {
	s.logger.Infof("clan sync service listening on %s", addr)
	return s.router.Run(addr)
}

// Package api exposes the session and history operations as a JSON HTTP API.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bayadbuddy/server/internal/history"
	"github.com/bayadbuddy/server/internal/models"
	"github.com/bayadbuddy/server/internal/session"
)

// Scanner is the receipt-scan collaborator consumed by the scan endpoint.
type Scanner interface {
	ParseReceipt(ctx context.Context, image []byte, mimeType string) ([]models.ScannedItem, error)
}

// Server is the HTTP API server.
type Server struct {
	router  *gin.Engine
	session *session.Session
	history *history.Store
	scanner Scanner
}

// NewServer wires the session, history store and scanner into a gin router.
func NewServer(sess *session.Session, hist *history.Store, scanner Scanner) *Server {
	s := &Server{
		router:  gin.New(),
		session: sess,
		history: hist,
		scanner: scanner,
	}

	s.router.Use(gin.Recovery(), requestLogger(), requestMetrics())
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/session", s.handleGetSession)
		v1.POST("/session/clear", s.handleClearSession)

		v1.POST("/session/people", s.handleAddPerson)
		v1.DELETE("/session/people/:id", s.handleRemovePerson)

		v1.POST("/session/items", s.handleAddItem)
		v1.PUT("/session/items/:id", s.handleUpdateItem)
		v1.DELETE("/session/items/:id", s.handleRemoveItem)

		v1.PUT("/session/discount", s.handleSetDiscount)
		v1.POST("/session/paid/:personId", s.handleTogglePaid)
		v1.POST("/session/scan", s.handleScanReceipt)

		v1.POST("/history", s.handleSaveBill)
		v1.GET("/history", s.handleListBills)
		v1.DELETE("/history/:id", s.handleRemoveBill)
		v1.DELETE("/history", s.handleClearHistory)
		v1.POST("/history/:id/paid/:personId", s.handleToggleHistoricalPaid)
	}
}

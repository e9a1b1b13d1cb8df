package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bayadbuddy/server/internal/history"
	"github.com/bayadbuddy/server/internal/models"
	"github.com/bayadbuddy/server/internal/scan"
	"github.com/bayadbuddy/server/internal/session"
)

type addPersonRequest struct {
	Name string `json:"name"`
}

type addItemRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type updateItemRequest struct {
	Name              string   `json:"name"`
	Price             float64  `json:"price"`
	AssignedPersonIDs []string `json:"assignedPersonIds"`
}

type scanRequest struct {
	// Image is the base64-encoded receipt image.
	Image    string `json:"image"`
	MimeType string `json:"mimeType"`
}

type saveBillRequest struct {
	Title string `json:"title"`
}

type sessionResponse struct {
	People   []models.Person       `json:"people"`
	Items    []models.Item         `json:"items"`
	Discount models.Discount       `json:"discount"`
	Results  []models.PersonResult `json:"results"`
}

// writeError maps the domain error taxonomy onto HTTP statuses. Unknown-id
// no-ops never reach here; they return success bodies.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrValidation), errors.Is(err, history.ErrNothingToSave):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, scan.ErrScanFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		slog.Error("Request handling failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().Unix()})
}

// sessionSnapshot assembles the live view: inputs plus the recomputed results.
func (s *Server) sessionSnapshot() (sessionResponse, error) {
	results, err := s.session.Results()
	if err != nil {
		return sessionResponse{}, err
	}
	return sessionResponse{
		People:   s.session.People(),
		Items:    s.session.Items(),
		Discount: s.session.Discount(),
		Results:  results,
	}, nil
}

func (s *Server) respondWithSession(c *gin.Context) {
	snapshot, err := s.sessionSnapshot()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleGetSession(c *gin.Context) {
	s.respondWithSession(c)
}

func (s *Server) handleClearSession(c *gin.Context) {
	if err := s.session.Clear(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	s.respondWithSession(c)
}

func (s *Server) handleAddPerson(c *gin.Context) {
	var req addPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	person, err := s.session.AddPerson(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, person)
}

func (s *Server) handleRemovePerson(c *gin.Context) {
	if err := s.session.RemovePerson(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	s.respondWithSession(c)
}

func (s *Server) handleAddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := s.session.AddItem(c.Request.Context(), req.Name, req.Price)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) handleUpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item := models.Item{
		ID:                c.Param("id"),
		Name:              req.Name,
		Price:             req.Price,
		AssignedPersonIDs: req.AssignedPersonIDs,
	}
	if err := s.session.UpdateItem(c.Request.Context(), item); err != nil {
		writeError(c, err)
		return
	}
	s.respondWithSession(c)
}

func (s *Server) handleRemoveItem(c *gin.Context) {
	if err := s.session.RemoveItem(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	s.respondWithSession(c)
}

func (s *Server) handleSetDiscount(c *gin.Context) {
	var req models.Discount
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := s.session.SetDiscount(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	s.respondWithSession(c)
}

func (s *Server) handleTogglePaid(c *gin.Context) {
	if err := s.session.TogglePaid(c.Request.Context(), c.Param("personId")); err != nil {
		writeError(c, err)
		return
	}
	s.respondWithSession(c)
}

func (s *Server) handleScanReceipt(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image must be base64 encoded"})
		return
	}
	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	candidates, err := s.scanner.ParseReceipt(c.Request.Context(), image, mimeType)
	if err != nil {
		slog.Error("Receipt scan failed", "error", err)
		writeError(c, err)
		return
	}

	added, err := s.session.AddScannedItems(c.Request.Context(), candidates)
	if err != nil {
		writeError(c, err)
		return
	}

	slog.Info("Receipt scanned", "items_added", len(added))
	c.JSON(http.StatusCreated, gin.H{"items": added})
}

func (s *Server) handleSaveBill(c *gin.Context) {
	var req saveBillRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	items := s.session.Items()
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot save a bill with no items"})
		return
	}

	results, err := s.session.Results()
	if err != nil {
		writeError(c, err)
		return
	}

	title := req.Title
	if title == "" {
		title = generateTitle(items)
	}

	bill, err := s.history.Save(c.Request.Context(), results, title)
	if err != nil {
		writeError(c, err)
		return
	}

	billsSaved.Inc()
	slog.Info("Bill saved", "bill_id", bill.ID, "title", bill.Title, "total", bill.Total)
	c.JSON(http.StatusCreated, bill)
}

func (s *Server) handleListBills(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bills": s.history.List()})
}

func (s *Server) handleRemoveBill(c *gin.Context) {
	if err := s.history.Remove(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": s.history.List()})
}

func (s *Server) handleClearHistory(c *gin.Context) {
	if err := s.history.Clear(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": []models.Bill{}})
}

func (s *Server) handleToggleHistoricalPaid(c *gin.Context) {
	if err := s.history.TogglePaid(c.Request.Context(), c.Param("id"), c.Param("personId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": s.history.List()})
}

// generateTitle builds a default bill title from the first item, in the same
// shape the app has always used ("Sisig..." when more items follow).
func generateTitle(items []models.Item) string {
	if len(items) == 0 {
		return fmt.Sprintf("Bill - %s", time.Now().Format("Jan 2, 2006"))
	}
	if len(items) > 1 {
		return items[0].Name + "..."
	}
	return items[0].Name
}

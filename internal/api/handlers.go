package api

import (
	"log"
	"net/http"

	"task-reminder-report/internal/database"
	"task-reminder-report/internal/models"
	"task-reminder-report/internal/services"

	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	reminders   *services.ReminderService
	checkpoints *services.CheckpointService
	mongoClient *database.MongoDBClient
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	reminders *services.ReminderService,
	checkpoints *services.CheckpointService,
	mongoClient *database.MongoDBClient,
) *Handlers {
	return &Handlers{
		reminders:   reminders,
		checkpoints: checkpoints,
		mongoClient: mongoClient,
	}
}

// RunReminderHandler handles POST /api/reminders/run. The cycle runs in the
// background; suspension and continuation are handled internally.
func (h *Handlers) RunReminderHandler(c *gin.Context) {
	var req models.RunReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Horizon.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "horizon must be \"today\" or \"week\""})
		return
	}

	go func() {
		if _, err := h.reminders.RunCycle(req.Audience, req.Horizon); err != nil {
			log.Printf("ERROR: Reminder cycle for %s/%s failed: %v", req.Audience, req.Horizon, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"audience": req.Audience, "horizon": req.Horizon, "started": true})
}

// ScanHandler handles POST /api/reminders/scan, running one synchronous scan
// invocation
func (h *Handlers) ScanHandler(c *gin.Context) {
	var req models.RunReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.reminders.Scan(req.Audience, req.Horizon)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.ScanResponse{
		Audience:  req.Audience,
		Horizon:   req.Horizon,
		Suspended: result.Suspended,
		Reports:   len(result.Reports),
	})
}

// DispatchHandler handles POST /api/reminders/dispatch. A PENDING or ABSENT
// gate makes this a no-op, mirrored in the response.
func (h *Handlers) DispatchHandler(c *gin.Context) {
	var req models.RunReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gate, err := h.checkpoints.Status(req.Audience, req.Horizon)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := h.reminders.Dispatch(req.Audience, req.Horizon); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audience": req.Audience, "horizon": req.Horizon, "dispatched": gate == models.ScanStatusDone})
}

// ResetHandler handles POST /api/reminders/reset, the manual recovery path
// for a desynchronized key
func (h *Handlers) ResetHandler(c *gin.Context) {
	var req models.RunReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.reminders.Reset(req.Audience, req.Horizon); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audience": req.Audience, "horizon": req.Horizon, "reset": true})
}

// StatusHandler handles GET /api/reminders/status/:audience/:horizon
func (h *Handlers) StatusHandler(c *gin.Context) {
	audience := c.Param("audience")
	horizon := models.Horizon(c.Param("horizon"))
	if !horizon.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "horizon must be \"today\" or \"week\""})
		return
	}

	gate, err := h.checkpoints.Status(audience, horizon)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	hasCheckpoint, cursor, err := h.checkpoints.HasState(audience, horizon)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	trigger, _, err := h.checkpoints.OwnedTrigger(audience, horizon)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Audience:      audience,
		Horizon:       horizon,
		Gate:          gate,
		Checkpoint:    hasCheckpoint,
		ResumeCursor:  cursor,
		ActiveTrigger: trigger,
	})
}

// GetDocumentHandler handles GET /api/documents/:id, serving the rendered
// HTML report document that notification links point at
func (h *Handlers) GetDocumentHandler(c *gin.Context) {
	id := c.Param("id")

	doc, err := h.mongoClient.GetDocument(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc.HTML))
}

// ListAudiencesHandler handles GET /api/audiences
func (h *Handlers) ListAudiencesHandler(c *gin.Context) {
	audiences, err := h.mongoClient.ListAudiences()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audiences": audiences})
}

// GetAudienceHandler handles GET /api/audiences/:name
func (h *Handlers) GetAudienceHandler(c *gin.Context) {
	name := c.Param("name")

	audience, err := h.mongoClient.GetAudience(name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if audience == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audience not found"})
		return
	}

	c.JSON(http.StatusOK, audience)
}

// UpsertAudienceHandler handles PUT /api/audiences/:name
func (h *Handlers) UpsertAudienceHandler(c *gin.Context) {
	name := c.Param("name")

	var audience models.AudienceConfig
	if err := c.ShouldBindJSON(&audience); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	audience.Name = name

	if audience.Mode != models.AudienceModeBroadcast && audience.Mode != models.AudienceModeIndividual {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be \"broadcast\" or \"individual\""})
		return
	}

	if err := h.mongoClient.UpsertAudience(audience); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, audience)
}

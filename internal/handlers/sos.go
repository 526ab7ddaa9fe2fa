package handlers

import (
	"net/http"

	"crimewatch/internal/middleware"
	"crimewatch/internal/models"
	"crimewatch/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SOSHandler struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewSOSHandler(conn *gorm.DB, logger *logrus.Logger) *SOSHandler {
	return &SOSHandler{db: conn, logger: logger}
}

type sosRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Message   string   `json:"message"`
}

// Send records an SOS alert. Works for both identified and anonymous
// callers; anonymous alerts carry no user id.
func (h *SOSHandler) Send(c *gin.Context) {
	var req sosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if !validCoords(*req.Latitude, *req.Longitude) {
		errorJSON(c, http.StatusBadRequest, "latitude must be within [-90, 90] and longitude within [-180, 180]")
		return
	}

	alert := models.SOSAlert{
		Message:   utils.SanitizeText(req.Message),
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	}
	if user := middleware.CurrentUser(c); user != nil {
		alert.UserID = &user.ID
	}

	if err := h.db.Create(&alert).Error; err != nil {
		internalError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"sos_id":    alert.ID,
		"anonymous": alert.UserID == nil,
	}).Info("SOS alert received")

	c.JSON(http.StatusOK, gin.H{"message": "SOS alert sent successfully", "sos_alert": alert})
}

// List returns all SOS alerts, newest first. Admin only.
func (h *SOSHandler) List(c *gin.Context) {
	var alerts []models.SOSAlert
	if err := h.db.Order("created_at DESC").Find(&alerts).Error; err != nil {
		internalError(c, err)
		return
	}
	if alerts == nil {
		alerts = []models.SOSAlert{}
	}
	c.JSON(http.StatusOK, alerts)
}

package handlers

import (
	"context"
	"net/http"
	"strings"

	"crimewatch/internal/middleware"
	"crimewatch/internal/models"
	"crimewatch/internal/services"
	"crimewatch/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CrimeHandler struct {
	db         *gorm.DB
	dispatcher *services.AlertDispatcher // nil when Redis is unconfigured
	logger     *logrus.Logger
}

func NewCrimeHandler(conn *gorm.DB, dispatcher *services.AlertDispatcher, logger *logrus.Logger) *CrimeHandler {
	return &CrimeHandler{db: conn, dispatcher: dispatcher, logger: logger}
}

type crimeCreateRequest struct {
	CrimeType   string   `json:"crime_type" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Latitude    *float64 `json:"latitude" binding:"required"`
	Longitude   *float64 `json:"longitude" binding:"required"`
	MediaURL    *string  `json:"media_url"`
}

func validCoords(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Create files a new crime report owned by the caller.
func (h *CrimeHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req crimeCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}
	if !validCoords(*req.Latitude, *req.Longitude) {
		errorJSON(c, http.StatusBadRequest, "latitude must be within [-90, 90] and longitude within [-180, 180]")
		return
	}

	crime := models.Crime{
		UserID:      user.ID,
		CrimeType:   req.CrimeType,
		Description: utils.SanitizeText(req.Description),
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		MediaURL:    req.MediaURL,
	}
	if err := h.db.Create(&crime).Error; err != nil {
		internalError(c, err)
		return
	}

	// Alert matching runs off the request path, delivery failures never
	// affect the reporting user.
	if h.dispatcher != nil {
		go h.dispatcher.Dispatch(context.Background(), &crime)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Crime created successfully", "crime": crime})
}

// List returns all reports, optionally filtered by crime type and by a
// geo radius around a center point. The radius filter runs in memory over the
// category-filtered candidate set.
func (h *CrimeHandler) List(c *gin.Context) {
	query := h.db.Model(&models.Crime{})

	if crimeType := c.Query("crime_type"); crimeType != "" {
		query = query.Where("LOWER(crime_type) LIKE ?", "%"+strings.ToLower(crimeType)+"%")
	}

	var crimes []models.Crime
	if err := query.Find(&crimes).Error; err != nil {
		internalError(c, err)
		return
	}

	radius, okRadius := utils.ParseFloat(c.Query("radius"))
	lat, okLat := utils.ParseFloat(c.Query("lat"))
	lng, okLng := utils.ParseFloat(c.Query("lng"))
	if okRadius && okLat && okLng {
		filtered := make([]models.Crime, 0, len(crimes))
		for _, crime := range crimes {
			if utils.Haversine(lat, lng, crime.Latitude, crime.Longitude) <= radius {
				filtered = append(filtered, crime)
			}
		}
		crimes = filtered
	}

	if crimes == nil {
		crimes = []models.Crime{}
	}
	c.JSON(http.StatusOK, crimes)
}

// Get returns a single report by id.
func (h *CrimeHandler) Get(c *gin.Context) {
	var crime models.Crime
	if err := h.db.First(&crime, "id = ?", c.Param("id")).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "Crime not found")
		return
	}
	c.JSON(http.StatusOK, crime)
}

type crimeUpdateRequest struct {
	CrimeType   *string  `json:"crime_type"`
	Description *string  `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	MediaURL    *string  `json:"media_url"`
}

// Update applies a partial update. Only the owning user may update a report.
func (h *CrimeHandler) Update(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var crime models.Crime
	if err := h.db.First(&crime, "id = ?", c.Param("id")).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "Crime not found")
		return
	}
	if crime.UserID != user.ID {
		errorJSON(c, http.StatusForbidden, "Not authorized to update this crime")
		return
	}

	var req crimeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.CrimeType != nil {
		crime.CrimeType = *req.CrimeType
	}
	if req.Description != nil {
		crime.Description = utils.SanitizeText(*req.Description)
	}
	if req.Latitude != nil {
		crime.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		crime.Longitude = *req.Longitude
	}
	if req.MediaURL != nil {
		crime.MediaURL = req.MediaURL
	}
	if !validCoords(crime.Latitude, crime.Longitude) {
		errorJSON(c, http.StatusBadRequest, "latitude must be within [-90, 90] and longitude within [-180, 180]")
		return
	}

	if err := h.db.Save(&crime).Error; err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, crime)
}

// Delete removes a report and cascades to its votes and flags in one
// transaction. Only the owning user may delete it.
func (h *CrimeHandler) Delete(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var crime models.Crime
	if err := h.db.First(&crime, "id = ?", c.Param("id")).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "Crime not found")
		return
	}
	if crime.UserID != user.ID {
		errorJSON(c, http.StatusForbidden, "Not authorized to delete this crime")
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("crime_id = ?", crime.ID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("crime_id = ?", crime.ID).Delete(&models.AnonymousVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("crime_id = ?", crime.ID).Delete(&models.FlaggedCrime{}).Error; err != nil {
			return err
		}
		return tx.Delete(&crime).Error
	})
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Crime deleted successfully"})
}

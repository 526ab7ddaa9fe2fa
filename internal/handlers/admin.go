package handlers

import (
	"net/http"
	"time"

	"crimewatch/internal/middleware"
	"crimewatch/internal/models"
	"crimewatch/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const statisticsCacheKey = "admin:statistics"
const statisticsCacheTTL = time.Minute

type AdminHandler struct {
	db     *gorm.DB
	cache  *utils.Cache
	logger *logrus.Logger
}

func NewAdminHandler(conn *gorm.DB, cache *utils.Cache, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{db: conn, cache: cache, logger: logger}
}

type flagRequest struct {
	Reason    string `json:"reason"`
	IsFlagged *bool  `json:"is_flagged"`
}

// Flag marks a report for moderation. Admin only; 404 when the report does
// not exist.
func (h *AdminHandler) Flag(c *gin.Context) {
	admin := middleware.CurrentUser(c)

	var crime models.Crime
	if err := h.db.First(&crime, "id = ?", c.Param("id")).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "Crime not found")
		return
	}

	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	reason := utils.SanitizeText(req.Reason)
	if reason == "" {
		reason = models.DefaultFlagReason
	}
	isFlagged := true
	if req.IsFlagged != nil {
		isFlagged = *req.IsFlagged
	}

	flagged := models.FlaggedCrime{
		CrimeID:   crime.ID,
		FlaggedBy: admin.ID,
		Reason:    reason,
		IsFlagged: isFlagged,
	}
	if err := h.db.Create(&flagged).Error; err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, flagged)
}

// FlaggedCrimes lists all moderation flags. Requires authentication but not
// the admin role.
func (h *AdminHandler) FlaggedCrimes(c *gin.Context) {
	var flags []models.FlaggedCrime
	if err := h.db.Order("created_at DESC").Find(&flags).Error; err != nil {
		internalError(c, err)
		return
	}
	if flags == nil {
		flags = []models.FlaggedCrime{}
	}
	c.JSON(http.StatusOK, flags)
}

type crimeTypeCount struct {
	CrimeType string `json:"type"`
	Count     int64  `json:"count"`
}

type hotspotRow struct {
	Latitude   float64
	Longitude  float64
	CrimeCount int64
}

// Statistics returns aggregate totals for the admin dashboard: report count,
// top-5 crime types and top-5 exact-coordinate hotspots. Hotspot grouping is
// literal lat/lng equality, not spatial clustering. Results are cached
// briefly.
func (h *AdminHandler) Statistics(c *gin.Context) {
	if cached := h.cache.Get(statisticsCacheKey); cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	var total int64
	if err := h.db.Model(&models.Crime{}).Count(&total).Error; err != nil {
		internalError(c, err)
		return
	}

	var topTypes []crimeTypeCount
	err := h.db.Model(&models.Crime{}).
		Select("crime_type, COUNT(*) as count").
		Group("crime_type").
		Order("count DESC, crime_type ASC").
		Limit(5).
		Scan(&topTypes).Error
	if err != nil {
		internalError(c, err)
		return
	}
	if topTypes == nil {
		topTypes = []crimeTypeCount{}
	}

	var hotspots []hotspotRow
	err = h.db.Model(&models.Crime{}).
		Select("latitude, longitude, COUNT(*) as crime_count").
		Group("latitude, longitude").
		Order("crime_count DESC, latitude ASC, longitude ASC").
		Limit(5).
		Scan(&hotspots).Error
	if err != nil {
		internalError(c, err)
		return
	}

	hotspotList := make([]gin.H, 0, len(hotspots))
	for _, spot := range hotspots {
		hotspotList = append(hotspotList, gin.H{
			"location":    gin.H{"latitude": spot.Latitude, "longitude": spot.Longitude},
			"crime_count": spot.CrimeCount,
		})
	}

	stats := gin.H{
		"total_reports":   total,
		"top_crime_types": topTypes,
		"hotspots":        hotspotList,
	}
	h.cache.Set(statisticsCacheKey, stats, statisticsCacheTTL)

	h.logger.WithFields(logrus.Fields{"total_reports": total}).Debug("statistics recomputed")

	c.JSON(http.StatusOK, stats)
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"crimewatch/internal/middleware"
	"crimewatch/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	minRadiusKm = 0.1
	maxRadiusKm = 100.0
)

type SubscriptionHandler struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewSubscriptionHandler(conn *gorm.DB, logger *logrus.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{db: conn, logger: logger}
}

type subscriptionRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
	Radius    *float64 `json:"radius" binding:"required"`
	IsActive  *bool    `json:"is_active"`
}

// Subscribe creates or updates the caller's geo-radius alert configuration.
// At most one subscription per user: an existing row is overwritten in place,
// keeping its prior active flag when the payload omits one.
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err.Error())
		return
	}

	lat, lng, radius := *req.Latitude, *req.Longitude, *req.Radius
	if lat < -90 || lat > 90 {
		errorJSON(c, http.StatusBadRequest, "latitude must be between -90 and 90")
		return
	}
	if lng < -180 || lng > 180 {
		errorJSON(c, http.StatusBadRequest, "longitude must be between -180 and 180")
		return
	}
	if radius <= 0 {
		errorJSON(c, http.StatusBadRequest, "radius must be a positive number (in km)")
		return
	}
	if radius < minRadiusKm || radius > maxRadiusKm {
		errorJSON(c, http.StatusBadRequest, fmt.Sprintf("radius must be between %g and %g km", minRadiusKm, maxRadiusKm))
		return
	}

	sub, err := h.upsert(user.ID, lat, lng, radius, req.IsActive)
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// upsert is read-modify-write; the unique index on user_id backs it up, so a
// concurrent create losing the race falls through to the update path.
func (h *SubscriptionHandler) upsert(userID uint, lat, lng, radius float64, active *bool) (*models.Subscription, error) {
	var sub models.Subscription
	err := h.db.Where("user_id = ?", userID).First(&sub).Error
	if err == nil {
		return h.overwrite(&sub, lat, lng, radius, active)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sub = models.Subscription{
		UserID:    userID,
		Latitude:  lat,
		Longitude: lng,
		Radius:    radius,
		IsActive:  true,
	}
	if active != nil {
		sub.IsActive = *active
	}
	if err := h.db.Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := h.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
				return nil, err
			}
			return h.overwrite(&sub, lat, lng, radius, active)
		}
		return nil, err
	}
	return &sub, nil
}

func (h *SubscriptionHandler) overwrite(sub *models.Subscription, lat, lng, radius float64, active *bool) (*models.Subscription, error) {
	sub.Latitude = lat
	sub.Longitude = lng
	sub.Radius = radius
	if active != nil {
		sub.IsActive = *active
	}
	if err := h.db.Save(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// Get returns the caller's subscription, 404 when none exists.
func (h *SubscriptionHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var sub models.Subscription
	if err := h.db.Where("user_id = ?", user.ID).First(&sub).Error; err != nil {
		errorJSON(c, http.StatusNotFound, "No subscription found for the user")
		return
	}

	c.JSON(http.StatusOK, sub)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tomato-api/middleware"
	"tomato-api/restaurant"
)

type RestaurantHandler struct {
	restaurants *restaurant.Service
	logger      *zap.Logger
}

func NewRestaurantHandler(restaurants *restaurant.Service, logger *zap.Logger) *RestaurantHandler {
	return &RestaurantHandler{restaurants: restaurants, logger: logger}
}

// ── Restaurant Management ────────────────────────────────────────────────────

type PositionRequest struct {
	Latitude  string `json:"latitude" binding:"required,latitude"`
	Longitude string `json:"longitude" binding:"required,longitude"`
}

type RegisterRestaurantRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Email       string          `json:"email" binding:"required,email"`
	Address     string          `json:"address" binding:"required"`
	City        string          `json:"city" binding:"required"`
	State       string          `json:"state" binding:"required"`
	ZipCode     string          `json:"zipCode" binding:"required,numeric"`
	PhoneNumber string          `json:"phoneNumber" binding:"required,numeric,min=7,max=15"`
	Position    PositionRequest `json:"position" binding:"required"`
}

type AvailabilityRequest struct {
	RestaurantID string `json:"restaurantId" binding:"required"`
}

// Register adds a restaurant owned by the caller, with an empty menu
func (h *RestaurantHandler) Register(c *gin.Context) {
	var req RegisterRestaurantRequest
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.restaurants.Register(c.Request.Context(), middleware.GetUserID(c), restaurant.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		PhoneNumber: req.PhoneNumber,
		Latitude:    req.Position.Latitude,
		Longitude:   req.Position.Longitude,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Restaurant added successfully", "result": r})
}

// Verify consumes the restaurant email verification token
func (h *RestaurantHandler) Verify(c *gin.Context) {
	r, err := h.restaurants.Verify(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email is verified successfully", "result": r})
}

// ChangeAvailability opens or closes a verified restaurant for orders
func (h *RestaurantHandler) ChangeAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if !bindJSON(c, &req) {
		return
	}
	open, err := h.restaurants.ToggleAvailability(c.Request.Context(), middleware.GetUserID(c), req.RestaurantID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":                      "Restaurant availability is updated successfully",
		"restaurantAvailabilityStatus": open,
	})
}

// Mine lists every restaurant of the caller, verified or not
func (h *RestaurantHandler) Mine(c *gin.Context) {
	list, err := h.restaurants.ListForUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurants found for the user", "count": len(list), "result": list})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tomato-api/statemachine"
)

// ListRestaurants returns verified restaurants; ?available=true keeps only open ones (public)
func (h *RestaurantHandler) ListRestaurants(c *gin.Context) {
	list, err := h.restaurants.List(c.Request.Context(), c.Query("available") == "true")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Fetched all restaurants",
		"count":   len(list),
		"result":  list,
	})
}

// GetRestaurant returns a single restaurant
func (h *RestaurantHandler) GetRestaurant(c *gin.Context) {
	r, err := h.restaurants.Get(c.Request.Context(), c.Param("restaurantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant found successfully", "result": r})
}

// GetMenu returns the nested menu of a restaurant (public)
func (h *CatalogHandler) GetMenu(c *gin.Context) {
	doc, err := h.catalog.Menu(c.Request.Context(), c.Param("restaurantId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu fetched successfully", "result": doc})
}

// GetStateMachineInfo returns the restaurant lifecycle for informational purposes
func GetStateMachineInfo(c *gin.Context) {
	transitions := statemachine.GetAllTransitions()
	info := make([]gin.H, 0, len(transitions))
	for _, t := range transitions {
		info = append(info, gin.H{"from": t.From, "event": t.Event, "to": t.To})
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine": info,
		"initial_state": statemachine.StateUnverified,
		"description":   "Restaurant verification and availability lifecycle",
	})
}

// Health reports that the process is serving
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "tomato-api"})
}

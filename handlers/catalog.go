package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tomato-api/apperror"
	"tomato-api/catalog"
	"tomato-api/menu"
	"tomato-api/middleware"
)

// CatalogHandler serves the menu mutation routes. Ancestor ids and restaurantId travel in
// the body, the target id in the path.
type CatalogHandler struct {
	catalog *catalog.Engine
	logger  *zap.Logger
}

func NewCatalogHandler(engine *catalog.Engine, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: engine, logger: logger}
}

type CategoryRequest struct {
	RestaurantID string `json:"restaurantId" binding:"required"`
	Name         string `json:"name" binding:"required,max=100"`
}

type DeleteCategoryRequest struct {
	RestaurantID string `json:"restaurantId" binding:"required"`
}

type AddSubCategoryRequest struct {
	RestaurantID    string `json:"restaurantId" binding:"required"`
	CategoryID      string `json:"categoryId" binding:"required"`
	SubCategoryName string `json:"subCategoryName" binding:"required_without=Name,max=100"`
	Name            string `json:"name" binding:"max=100"`
}

type SubCategoryRequest struct {
	RestaurantID string `json:"restaurantId" binding:"required"`
	CategoryID   string `json:"categoryId" binding:"required"`
	Name         string `json:"name" binding:"required,max=100"`
}

type DeleteSubCategoryRequest struct {
	RestaurantID string `json:"restaurantId" binding:"required"`
	CategoryID   string `json:"categoryId" binding:"required"`
}

type AddItemRequest struct {
	RestaurantID    string   `json:"restaurantId" binding:"required"`
	CategoryID      string   `json:"categoryId" binding:"required"`
	SubCategoryID   string   `json:"subCategoryId" binding:"required"`
	Name            string   `json:"name" binding:"required,max=100"`
	Description     string   `json:"description" binding:"max=500"`
	Rate            *float64 `json:"rate" binding:"omitempty,gte=0"`
	IsVeg           *bool    `json:"isVeg" binding:"required"`
	IsItemAvailable bool     `json:"isItemAvailable"`
}

type EditItemRequest struct {
	RestaurantID    string   `json:"restaurantId" binding:"required"`
	CategoryID      string   `json:"categoryId" binding:"required"`
	SubCategoryID   string   `json:"subCategoryId" binding:"required"`
	Description     *string  `json:"description" binding:"omitempty,max=500"`
	Rate            *float64 `json:"rate" binding:"omitempty,gte=0"`
	IsItemAvailable *bool    `json:"isItemAvailable"`

	// immutable after creation, rejected when present
	Name  *string `json:"name"`
	IsVeg *bool   `json:"isVeg"`
}

type DeleteItemRequest struct {
	RestaurantID  string `json:"restaurantId" binding:"required"`
	CategoryID    string `json:"categoryId" binding:"required"`
	SubCategoryID string `json:"subCategoryId" binding:"required"`
}

func (h *CatalogHandler) respond(c *gin.Context, msg string, n menu.Node, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "result": n})
}

// ── Categories ───────────────────────────────────────────────────────────────

// AddCategory appends a category to the restaurant's menu
func (h *CatalogHandler) AddCategory(c *gin.Context) {
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.catalog.AddCategory(c.Request.Context(), middleware.GetUserID(c), req.RestaurantID, req.Name)
	h.respond(c, "Category is created successfully", n, err)
}

// EditCategory renames a category
func (h *CatalogHandler) EditCategory(c *gin.Context) {
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.catalog.RenameCategory(c.Request.Context(), middleware.GetUserID(c), req.RestaurantID, c.Param("categoryId"), req.Name)
	h.respond(c, "Category is updated successfully", n, err)
}

// DeleteCategory removes a category with all its sub-categories and items
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	var req DeleteCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.catalog.DeleteCategory(c.Request.Context(), middleware.GetUserID(c), req.RestaurantID, c.Param("categoryId"))
	h.respond(c, "Category is removed successfully", n, err)
}

// ── Sub-categories ───────────────────────────────────────────────────────────

// AddSubCategory appends a sub-category under a category
func (h *CatalogHandler) AddSubCategory(c *gin.Context) {
	var req AddSubCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	name := req.SubCategoryName
	if name == "" {
		name = req.Name
	}
	n, err := h.catalog.AddSubCategory(c.Request.Context(), middleware.GetUserID(c), req.RestaurantID, req.CategoryID, name)
	h.respond(c, "Sub-category is created successfully", n, err)
}

// EditSubCategory renames a sub-category
func (h *CatalogHandler) EditSubCategory(c *gin.Context) {
	var req SubCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.catalog.RenameSubCategory(c.Request.Context(), middleware.GetUserID(c),
		req.RestaurantID, req.CategoryID, c.Param("subCategoryId"), req.Name)
	h.respond(c, "Sub-category is updated successfully", n, err)
}

// DeleteSubCategory removes a sub-category with all its items
func (h *CatalogHandler) DeleteSubCategory(c *gin.Context) {
	var req DeleteSubCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.catalog.DeleteSubCategory(c.Request.Context(), middleware.GetUserID(c),
		req.RestaurantID, req.CategoryID, c.Param("subCategoryId"))
	h.respond(c, "Sub-category is removed successfully", n, err)
}

// ── Items ────────────────────────────────────────────────────────────────────

// AddItem adds an item to a sub-category
func (h *CatalogHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.catalog.AddItem(c.Request.Context(), middleware.GetUserID(c),
		req.RestaurantID, req.CategoryID, req.SubCategoryID, catalog.ItemInput{
			Name:            req.Name,
			Description:     req.Description,
			Rate:            req.Rate,
			IsVeg:           *req.IsVeg,
			IsItemAvailable: req.IsItemAvailable,
		})
	h.respond(c, "Item is successfully added to the list", n, err)
}

// EditItem patches description, rate or availability of an item
func (h *CatalogHandler) EditItem(c *gin.Context) {
	var req EditItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name != nil || req.IsVeg != nil {
		respondError(c, h.logger, apperror.InvalidInput("Item name and isVeg cannot be changed"))
		return
	}
	n, err := h.catalog.EditItem(c.Request.Context(), middleware.GetUserID(c),
		req.RestaurantID, req.CategoryID, req.SubCategoryID, c.Param("itemId"), catalog.ItemPatch{
			Description:     req.Description,
			Rate:            req.Rate,
			IsItemAvailable: req.IsItemAvailable,
		})
	h.respond(c, "Item is updated successfully", n, err)
}

// DeleteItem removes an item
func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	var req DeleteItemRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.catalog.DeleteItem(c.Request.Context(), middleware.GetUserID(c),
		req.RestaurantID, req.CategoryID, req.SubCategoryID, c.Param("itemId"))
	h.respond(c, "Item is removed successfully", n, err)
}

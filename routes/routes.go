package routes

import (
	"tomato-api/auth"
	"tomato-api/handlers"
	"tomato-api/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Restaurant *handlers.RestaurantHandler
	Catalog    *handlers.CatalogHandler
}

func SetupRoutes(r *gin.Engine, h Handlers, tokens *auth.Tokens) {
	requireAuth := middleware.AuthRequired(tokens)

	r.GET("/health", handlers.Health)

	v1 := r.Group("/v1")

	// ── Accounts ───────────────────────────────────────────────────
	account := v1.Group("/auth")
	{
		account.POST("/signup", h.Auth.Signup)
		account.PATCH("/verification/:token", h.Auth.VerifyEmail)
		account.POST("/login", h.Auth.Login)
		account.PATCH("/password/change", requireAuth, h.Auth.ChangePassword)
		account.PATCH("/password/reset", h.Auth.ResetLink)
		account.PATCH("/reset/:token", h.Auth.ResetPassword)
	}

	// ── Public restaurant reads ────────────────────────────────────
	public := v1.Group("/restaurant")
	{
		public.GET("/all", h.Restaurant.ListRestaurants)
		public.GET("/state-machine", handlers.GetStateMachineInfo)
		public.GET("/menu/:restaurantId", h.Catalog.GetMenu)
		public.GET("/:restaurantId", h.Restaurant.GetRestaurant)
		public.PATCH("/verification/:token", h.Restaurant.Verify)
	}

	// ── Restaurant owner routes ────────────────────────────────────
	owner := v1.Group("/restaurant")
	owner.Use(requireAuth)
	{
		owner.POST("/add", h.Restaurant.Register)
		owner.GET("/mine", h.Restaurant.Mine)
		owner.PATCH("/changeAvailability", h.Restaurant.ChangeAvailability)

		// Menu management
		owner.PATCH("/category/add", h.Catalog.AddCategory)
		owner.PATCH("/category/edit/:categoryId", h.Catalog.EditCategory)
		owner.PATCH("/category/delete/:categoryId", h.Catalog.DeleteCategory)

		owner.PATCH("/subCategory/add", h.Catalog.AddSubCategory)
		owner.PATCH("/subCategory/edit/:subCategoryId", h.Catalog.EditSubCategory)
		owner.PATCH("/subCategory/delete/:subCategoryId", h.Catalog.DeleteSubCategory)

		owner.PATCH("/item/add", h.Catalog.AddItem)
		owner.PATCH("/item/edit/:itemId", h.Catalog.EditItem)
		owner.PATCH("/item/delete/:itemId", h.Catalog.DeleteItem)
	}
}

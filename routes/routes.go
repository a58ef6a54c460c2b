package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/Mekimak/efoyta-sub000/handlers"
	"github.com/Mekimak/efoyta-sub000/middleware"
	"github.com/Mekimak/efoyta-sub000/store"
	"github.com/Mekimak/efoyta-sub000/utils"
)

func RegisterRoutes(e *echo.Echo, propertyStore store.PropertyStore, feed store.ChangeFeed, log *utils.Logger) {
	sessions := handlers.NewSessionManager(propertyStore, feed, log)

	auth := handlers.NewAuthController(sessions)
	properties := handlers.NewPropertyController(propertyStore, log)
	favorites := handlers.NewFavoriteController(sessions)
	catalog := handlers.NewCatalogController(sessions)

	e.GET("/health", handlers.HealthCheck)

	e.POST("/auth/register", auth.Register)
	e.POST("/auth/login", auth.Login)

	e.GET("/properties", properties.ListProperties)
	e.GET("/properties/:id", properties.GetProperty)

	authed := e.Group("", middleware.JWTMiddleware())
	authed.POST("/auth/logout", auth.Logout)
	authed.GET("/catalog", catalog.GetCatalog)
	authed.POST("/catalog/refresh", catalog.RefreshCatalog)
	authed.GET("/favorites", favorites.ListFavorites)
	authed.POST("/favorites/:propertyId", favorites.SaveFavorite)
	authed.DELETE("/favorites/:propertyId", favorites.RemoveFavorite)
}

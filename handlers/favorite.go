package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Mekimak/efoyta-sub000/utils"
)

type FavoriteController struct {
	sessions *SessionManager
}

func NewFavoriteController(sessions *SessionManager) *FavoriteController {
	return &FavoriteController{sessions: sessions}
}

// SaveFavorite saves a property for the signed-in user. The operation is
// idempotent: re-saving an already saved property succeeds without a second
// row, including when the duplicate comes from a racing request in another
// tab or device.
func (fc *FavoriteController) SaveFavorite(c echo.Context) error {
	userID := c.Get("user_id").(primitive.ObjectID)
	propertyID := c.Param("propertyId")
	if !utils.IsValidPropertyID(propertyID) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid property ID"})
	}

	us, err := fc.sessions.forUser(c.Request().Context(), userID)
	if err != nil {
		return storeError(c, err, "Failed to load saved properties")
	}
	if err := us.sync.Save(c.Request().Context(), propertyID); err != nil {
		return storeError(c, err, "Failed to save property")
	}
	return c.JSON(http.StatusCreated, map[string]any{"propertyId": propertyID, "saved": true})
}

// RemoveFavorite unsaves a property. Removing a property that was never
// saved succeeds and changes nothing.
func (fc *FavoriteController) RemoveFavorite(c echo.Context) error {
	userID := c.Get("user_id").(primitive.ObjectID)
	propertyID := c.Param("propertyId")
	if !utils.IsValidPropertyID(propertyID) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid property ID"})
	}

	us, err := fc.sessions.forUser(c.Request().Context(), userID)
	if err != nil {
		return storeError(c, err, "Failed to load saved properties")
	}
	if err := us.sync.Unsave(c.Request().Context(), propertyID); err != nil {
		return storeError(c, err, "Failed to remove saved property")
	}
	return c.JSON(http.StatusOK, map[string]any{"propertyId": propertyID, "saved": false})
}

// ListFavorites returns the ids the user has saved.
func (fc *FavoriteController) ListFavorites(c echo.Context) error {
	userID := c.Get("user_id").(primitive.ObjectID)

	us, err := fc.sessions.forUser(c.Request().Context(), userID)
	if err != nil {
		return storeError(c, err, "Failed to load saved properties")
	}
	return c.JSON(http.StatusOK, map[string]any{"propertyIds": us.sync.SavedIDs()})
}

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogController serves the signed-in catalog view: the filtered, sorted
// collection with each row stamped with the user's saved flag.
type CatalogController struct {
	sessions *SessionManager
}

func NewCatalogController(sessions *SessionManager) *CatalogController {
	return &CatalogController{sessions: sessions}
}

func (cc *CatalogController) GetCatalog(c echo.Context) error {
	userID := c.Get("user_id").(primitive.ObjectID)

	filter, sortSpec, err := specFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	us, err := cc.sessions.forUser(c.Request().Context(), userID)
	if err != nil {
		return storeError(c, err, "Failed to load catalog session")
	}

	session := us.catalog
	if err := session.SetSpec(c.Request().Context(), filter, sortSpec); err != nil {
		return storeError(c, err, "Failed to load catalog")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"state": session.State().String(),
		"items": session.View(),
	})
}

// RefreshCatalog forces a refetch past the session's local cache tier.
func (cc *CatalogController) RefreshCatalog(c echo.Context) error {
	userID := c.Get("user_id").(primitive.ObjectID)

	us, err := cc.sessions.forUser(c.Request().Context(), userID)
	if err != nil {
		return storeError(c, err, "Failed to load catalog session")
	}
	if err := us.catalog.Refresh(c.Request().Context()); err != nil {
		return storeError(c, err, "Failed to refresh catalog")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"state": us.catalog.State().String(),
		"items": us.catalog.View(),
	})
}

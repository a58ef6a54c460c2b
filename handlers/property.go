package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Mekimak/efoyta-sub000/catalog"
	"github.com/Mekimak/efoyta-sub000/models"
	"github.com/Mekimak/efoyta-sub000/store"
	"github.com/Mekimak/efoyta-sub000/utils"
)

const listCachePrefix = "properties"

type PropertyController struct {
	store store.PropertyStore
	log   *utils.Logger
}

func NewPropertyController(s store.PropertyStore, log *utils.Logger) *PropertyController {
	return &PropertyController{store: s, log: log}
}

// ListProperties serves the public catalog. Query params become a
// FilterSpec/SortSpec pair; exact-match facets are pushed to the store as a
// prefilter and the engine re-applies the full spec to the result. Whole
// responses are cached in Redis keyed by the normalized query.
func (pc *PropertyController) ListProperties(c echo.Context) error {
	filter, sortSpec, err := specFromQuery(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	cacheKey := listCacheKey(c.QueryParams())

	ctx := c.Request().Context()
	var cached []models.Property
	if hit, err := utils.GetCached(ctx, cacheKey, &cached); err == nil && hit {
		return c.JSON(http.StatusOK, cached)
	}

	prefilter := &store.ServerFilter{Type: filter.Type, Status: filter.Status}
	if filter.MinBedrooms != nil {
		prefilter.MinBedrooms = *filter.MinBedrooms
	}
	properties, err := pc.store.ListProperties(ctx, prefilter)
	if err != nil {
		return storeError(c, err, "Failed to fetch properties")
	}

	view := catalog.Apply(properties, filter, sortSpec)
	if err := utils.SetCached(ctx, cacheKey, view, 60*time.Second); err != nil {
		pc.log.Warn("failed to cache property list: %v", err)
	}
	return c.JSON(http.StatusOK, view)
}

// GetProperty is a point read; it bumps the listing's view counter.
func (pc *PropertyController) GetProperty(c echo.Context) error {
	id := c.Param("id")
	if !utils.IsValidPropertyID(id) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid property ID"})
	}
	property, err := pc.store.GetProperty(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Property not found"})
		}
		return storeError(c, err, "Failed to fetch property")
	}
	return c.JSON(http.StatusOK, property)
}

// listCacheKey folds every value of every query param into the cache key.
// Repeated params (amenities in particular) filter differently per value,
// so collapsing them to the first value would let distinct queries share a
// cached response. Values are sorted so param order does not split the
// cache.
func listCacheKey(values url.Values) string {
	params := make(map[string]string, len(values))
	for k, vs := range values {
		sorted := append([]string(nil), vs...)
		sort.Strings(sorted)
		params[k] = strings.Join(sorted, ",")
	}
	return utils.GenerateQueryCacheKey(listCachePrefix, params)
}

func specFromQuery(c echo.Context) (models.FilterSpec, models.SortSpec, error) {
	var filter models.FilterSpec

	filter.Location = c.QueryParam("location")
	filter.Type = models.PropertyType(c.QueryParam("type"))
	filter.Status = models.PropertyStatus(c.QueryParam("status"))

	if v := c.QueryParam("price_min"); v != "" {
		if min, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &min
		}
	}
	if v := c.QueryParam("price_max"); v != "" {
		if max, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &max
		}
	}
	if v := c.QueryParam("bedrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.MinBedrooms = &n
		}
	}
	if v := c.QueryParam("bathrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.MinBathrooms = &n
		}
	}
	if v := c.QueryParam("amenities"); v != "" {
		filter.Amenities = c.QueryParams()["amenities"]
	}
	if v := c.QueryParam("near_university"); v != "" {
		near := v == "true"
		filter.NearUniversity = &near
	}

	if err := filter.Validate(); err != nil {
		return filter, "", err
	}

	sortSpec := models.SortSpec(c.QueryParam("sort"))
	if sortSpec == "" {
		sortSpec = models.SortNewest
	}
	if err := sortSpec.Validate(); err != nil {
		return filter, "", err
	}
	return filter, sortSpec, nil
}

// storeError maps the store's error taxonomy onto HTTP statuses.
func storeError(c echo.Context, err error, fallback string) error {
	var terr *store.TransientError
	if errors.As(err, &terr) || errors.Is(err, context.DeadlineExceeded) {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Temporary failure, please retry"})
	}
	var aerr *store.AuthorizationError
	if errors.As(err, &aerr) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "Not authorized"})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": fallback})
}

package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/findam/metrics"
	"github.com/meinhoongagan/findam/middleware"
	"github.com/meinhoongagan/findam/services"
	"github.com/meinhoongagan/findam/store"
)

// ProviderController serves the public provider directory.
type ProviderController struct {
	query *services.ProviderQuery
}

func NewProviderController(query *services.ProviderQuery) *ProviderController {
	return &ProviderController{query: query}
}

// GetProviders searches active providers. Supported query params:
// search, area (or the older location), category, minRating.
func (h *ProviderController) GetProviders(c *fiber.Ctx) error {
	area := c.Query("area")
	if area == "" {
		area = c.Query("location")
	}
	filter := store.ParseProviderFilter(c.Query("search"), area, c.Query("category"), c.Query("minRating"))

	providers, err := h.query.Search(c.UserContext(), filter)
	metrics.RecordSearch(len(providers), err)
	if err != nil {
		return middleware.Abort(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    providers,
		"count":   len(providers),
	})
}

// GetProvider returns a single provider by id
func (h *ProviderController) GetProvider(c *fiber.Ctx) error {
	id, ok := parseID(c.Params("id"))
	if !ok {
		return middleware.Abort(c, services.ErrProviderNotFound())
	}

	provider, err := h.query.Get(c.UserContext(), id)
	if err != nil {
		return middleware.Abort(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    provider,
	})
}

func (h *ProviderController) GetProviderByUser(c *fiber.Ctx) error {
	userID, ok := parseID(c.Params("userId"))
	if !ok {
		return middleware.Abort(c, services.ErrProviderNotFound())
	}

	provider, err := h.query.GetByUser(c.UserContext(), userID)
	if err != nil {
		return middleware.Abort(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    provider,
	})
}

// CheckProvider tells the signed-in user whether they already own a
// provider profile. Anonymous callers get exists=false.
func (h *ProviderController) CheckProvider(c *fiber.Ctx) error {
	s := middleware.SessionFrom(c)
	if s == nil {
		return c.JSON(fiber.Map{"exists": false})
	}

	exists, err := h.query.Exists(c.UserContext(), s.AccountID)
	if err != nil {
		return middleware.Abort(c, err)
	}
	return c.JSON(fiber.Map{"exists": exists})
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

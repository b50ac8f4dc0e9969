package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jacentio/stevedore/internal/apierr"
	"github.com/jacentio/stevedore/internal/auth"
	"github.com/jacentio/stevedore/internal/paging"
	"github.com/jacentio/stevedore/internal/platform/logger"
	"github.com/jacentio/stevedore/internal/relation"
	"github.com/jacentio/stevedore/internal/validate"
)

// CargoHandler serves the unscoped cargo item collection.
type CargoHandler struct {
	manager *relation.Manager
	engine  *paging.Engine
	log     *logger.Logger
}

// NewCargoHandler creates a CargoHandler.
func NewCargoHandler(manager *relation.Manager, engine *paging.Engine, log *logger.Logger) *CargoHandler {
	return &CargoHandler{manager: manager, engine: engine, log: log}
}

// List handles GET /items.
func (h *CargoHandler) List(c *gin.Context) {
	if !acceptsJSON(c) {
		respondError(c, apierr.NotAcceptable())
		return
	}

	page, err := h.engine.ListCargo(c.Request.Context(), c.Query("cursor"))
	if err != nil {
		respondError(c, err)
		return
	}

	for _, item := range page.Items {
		decorateCargo(c, item)
	}
	response := gin.H{
		"items":       page.Items,
		"total_items": page.TotalItems,
	}
	if page.NextCursor != "" {
		response["next"] = nextLink(c, "/items", page.NextCursor)
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /items/:itemID.
func (h *CargoHandler) Get(c *gin.Context) {
	id, ok := parseID(c.Param("itemID"))
	if !ok {
		respondError(c, apierr.NotFound("No cargo item with this item_id exists"))
		return
	}

	item, err := h.manager.GetCargo(c.Request.Context(), auth.Subject(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !acceptsJSON(c) {
		respondError(c, apierr.NotAcceptable())
		return
	}
	c.JSON(http.StatusOK, decorateCargo(c, item))
}

// Create handles POST /items.
func (h *CargoHandler) Create(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, apierr.Validation("Request has invalid data."))
		return
	}
	fields, err := validate.CargoStrict(body)
	if err != nil {
		respondError(c, err)
		return
	}
	if !acceptsJSON(c) {
		respondError(c, apierr.NotAcceptable())
		return
	}

	item, err := h.manager.CreateCargo(c.Request.Context(), auth.Subject(c), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, decorateCargo(c, item))
}

// Replace handles PUT /items/:itemID. Resets the carrier to null.
func (h *CargoHandler) Replace(c *gin.Context) {
	id, ok := parseID(c.Param("itemID"))
	if !ok {
		respondError(c, apierr.NotFound("No cargo item with this item_id exists"))
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		respondError(c, apierr.Validation("Request has invalid data."))
		return
	}
	fields, err := validate.CargoStrict(body)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.manager.ReplaceCargo(c.Request.Context(), auth.Subject(c), id, fields); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Patch handles PATCH /items/:itemID. Accepts any subset of fields.
func (h *CargoHandler) Patch(c *gin.Context) {
	id, ok := parseID(c.Param("itemID"))
	if !ok {
		respondError(c, apierr.NotFound("No cargo item with this item_id exists"))
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		respondError(c, apierr.Validation("Request has invalid data."))
		return
	}
	fields, err := validate.CargoPartial(body)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.manager.PatchCargo(c.Request.Context(), auth.Subject(c), id, fields); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /items/:itemID.
func (h *CargoHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("itemID"))
	if !ok {
		respondError(c, apierr.NotFound("No cargo item with this item_id exists"))
		return
	}

	if err := h.manager.DeleteCargo(c.Request.Context(), auth.Subject(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MethodNotAllowed rejects collection-root edits.
func (h *CargoHandler) MethodNotAllowed(c *gin.Context) {
	c.Header("Accept", "GET, POST")
	c.Status(http.StatusMethodNotAllowed)
}

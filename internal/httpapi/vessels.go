package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jacentio/stevedore/internal/apierr"
	"github.com/jacentio/stevedore/internal/auth"
	"github.com/jacentio/stevedore/internal/model"
	"github.com/jacentio/stevedore/internal/paging"
	"github.com/jacentio/stevedore/internal/platform/logger"
	"github.com/jacentio/stevedore/internal/relation"
	"github.com/jacentio/stevedore/internal/validate"
)

// VesselHandler serves the owner-scoped vessel collection.
type VesselHandler struct {
	manager *relation.Manager
	engine  *paging.Engine
	log     *logger.Logger
}

// NewVesselHandler creates a VesselHandler.
func NewVesselHandler(manager *relation.Manager, engine *paging.Engine, log *logger.Logger) *VesselHandler {
	return &VesselHandler{manager: manager, engine: engine, log: log}
}

// Create handles POST /vessels.
func (h *VesselHandler) Create(c *gin.Context) {
	if !isJSONContent(c) {
		respondError(c, apierr.UnsupportedMedia())
		return
	}
	if !acceptsJSON(c) {
		respondError(c, apierr.NotAcceptable())
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		respondError(c, apierr.Validation("Request has invalid data."))
		return
	}
	fields, err := validate.VesselStrict(body)
	if err != nil {
		respondError(c, err)
		return
	}

	v, err := h.manager.CreateVessel(c.Request.Context(), auth.Subject(c), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, decorateVessel(c, v))
}

// List handles GET /vessels.
func (h *VesselHandler) List(c *gin.Context) {
	if !acceptsJSON(c) {
		respondError(c, apierr.NotAcceptable())
		return
	}

	page, err := h.engine.ListVessels(c.Request.Context(), auth.Subject(c), c.Query("cursor"))
	if err != nil {
		respondError(c, err)
		return
	}

	for _, v := range page.Items {
		decorateVessel(c, v)
	}
	response := gin.H{
		"items":       page.Items,
		"total_items": page.TotalItems,
	}
	if page.NextCursor != "" {
		response["next"] = nextLink(c, "/vessels", page.NextCursor)
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /vessels/:vesselID.
func (h *VesselHandler) Get(c *gin.Context) {
	id, ok := parseID(c.Param("vesselID"))
	if !ok {
		respondError(c, apierr.NotFound("No vessel with this vessel_id exists"))
		return
	}

	v, err := h.manager.GetVessel(c.Request.Context(), auth.Subject(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !acceptsJSON(c) {
		respondError(c, apierr.NotAcceptable())
		return
	}
	c.JSON(http.StatusOK, decorateVessel(c, v))
}

// Replace handles PUT /vessels/:vesselID. Destructive: detaches all cargo.
func (h *VesselHandler) Replace(c *gin.Context) {
	id, ok := parseID(c.Param("vesselID"))
	if !ok {
		respondError(c, apierr.NotFound("No vessel with this vessel_id exists"))
		return
	}

	subject := auth.Subject(c)
	if _, err := h.manager.GetVessel(c.Request.Context(), subject, id); err != nil {
		respondError(c, err)
		return
	}

	if !isJSONContent(c) {
		respondError(c, apierr.UnsupportedMedia())
		return
	}
	if !acceptsJSON(c) {
		respondError(c, apierr.NotAcceptable())
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, apierr.Validation("Request has invalid data."))
		return
	}
	fields, err := validate.VesselStrict(body)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.manager.ReplaceVessel(c.Request.Context(), subject, id, fields); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Patch handles PATCH /vessels/:vesselID.
func (h *VesselHandler) Patch(c *gin.Context) {
	id, ok := parseID(c.Param("vesselID"))
	if !ok {
		respondError(c, apierr.NotFound("No vessel with this vessel_id exists"))
		return
	}

	subject := auth.Subject(c)
	if _, err := h.manager.GetVessel(c.Request.Context(), subject, id); err != nil {
		respondError(c, err)
		return
	}

	if !isJSONContent(c) {
		respondError(c, apierr.UnsupportedMedia())
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, apierr.Validation("Request has invalid data."))
		return
	}
	fields, err := validate.VesselPartial(body)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.manager.PatchVessel(c.Request.Context(), subject, id, fields); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /vessels/:vesselID.
func (h *VesselHandler) Delete(c *gin.Context) {
	id, ok := parseID(c.Param("vesselID"))
	if !ok {
		respondError(c, apierr.NotFound("No vessel with this vessel_id exists"))
		return
	}

	if err := h.manager.DeleteVessel(c.Request.Context(), auth.Subject(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListCargo handles GET /vessels/:vesselID/items.
func (h *VesselHandler) ListCargo(c *gin.Context) {
	id, ok := parseID(c.Param("vesselID"))
	if !ok {
		respondError(c, apierr.NotFound("No vessel with this vessel_id exists"))
		return
	}

	items, err := h.manager.VesselCargo(c.Request.Context(), auth.Subject(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	for _, item := range items {
		decorateCargo(c, item)
	}
	if items == nil {
		items = []*model.CargoItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Assign handles PUT /vessels/:vesselID/items/:itemID.
func (h *VesselHandler) Assign(c *gin.Context) {
	vesselID, okV := parseID(c.Param("vesselID"))
	itemID, okI := parseID(c.Param("itemID"))
	if !okV || !okI {
		respondError(c, apierr.NotFound("The specified vessel and/or cargo item does not exist"))
		return
	}

	if err := h.manager.Assign(c.Request.Context(), auth.Subject(c), vesselID, itemID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unassign handles DELETE /vessels/:vesselID/items/:itemID.
func (h *VesselHandler) Unassign(c *gin.Context) {
	vesselID, okV := parseID(c.Param("vesselID"))
	itemID, okI := parseID(c.Param("itemID"))
	if !okV || !okI {
		respondError(c, apierr.NotFound(
			"No vessel with this vessel_id is loaded with the cargo item with this item_id"))
		return
	}

	if err := h.manager.Unassign(c.Request.Context(), auth.Subject(c), vesselID, itemID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MethodNotAllowed rejects collection-root edits.
func (h *VesselHandler) MethodNotAllowed(c *gin.Context) {
	c.Header("Accept", "GET, POST")
	c.Status(http.StatusMethodNotAllowed)
}

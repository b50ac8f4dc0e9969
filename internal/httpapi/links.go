package httpapi

import (
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/jacentio/stevedore/internal/model"
)

// baseURL reconstructs the externally visible origin for self links.
func baseURL(c *gin.Context) string {
	scheme := "http"
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}

func vesselSelf(c *gin.Context, id int64) string {
	return fmt.Sprintf("%s/vessels/%d", baseURL(c), id)
}

func cargoSelf(c *gin.Context, id int64) string {
	return fmt.Sprintf("%s/items/%d", baseURL(c), id)
}

// nextLink builds the follow-up listing URL carrying the cursor token.
func nextLink(c *gin.Context, path, cursorToken string) string {
	return fmt.Sprintf("%s%s?cursor=%s", baseURL(c), path, url.QueryEscape(cursorToken))
}

// decorateVessel attaches self links to a vessel and its child refs.
func decorateVessel(c *gin.Context, v *model.Vessel) *model.Vessel {
	v.Self = vesselSelf(c, v.ID)
	for i := range v.Children {
		v.Children[i].Self = cargoSelf(c, v.Children[i].ID)
	}
	return v
}

// decorateCargo attaches self links to a cargo item and its carrier ref.
func decorateCargo(c *gin.Context, item *model.CargoItem) *model.CargoItem {
	item.Self = cargoSelf(c, item.ID)
	if item.Carrier != nil {
		item.Carrier.Self = vesselSelf(c, item.Carrier.ID)
	}
	return item
}

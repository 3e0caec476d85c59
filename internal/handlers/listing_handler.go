package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/nomadlab/seoulbang/internal/errors"
	"github.com/nomadlab/seoulbang/internal/middleware"
	"github.com/nomadlab/seoulbang/internal/services"
)

// ListingHandler handles listing-related HTTP requests.
type ListingHandler struct {
	service services.ListingService
}

// NewListingHandler creates a new ListingHandler instance.
func NewListingHandler(service services.ListingService) *ListingHandler {
	return &ListingHandler{
		service: service,
	}
}

// Detail handles GET /api/v1/listings/:id.
// It retrieves one listing with its photos, tags, and linked facilities.
func (h *ListingHandler) Detail(c *gin.Context) {
	log := middleware.GetLogger(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		apierrors.BadRequest(c, apierrors.ErrBadRequest, "Listing id must be a positive integer", nil)
		return
	}

	if log != nil {
		log.Info("Processing listing detail request", map[string]interface{}{
			"listing_id": id,
		})
	}

	detail, err := h.service.GetListingDetail(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			apierrors.NotFound(c, "Listing not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to query listing", err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/nomadlab/seoulbang/internal/errors"
	"github.com/nomadlab/seoulbang/internal/middleware"
	"github.com/nomadlab/seoulbang/internal/services"
)

// RecommendHandler handles recommendation HTTP requests.
type RecommendHandler struct {
	service services.RecommendService
}

// NewRecommendHandler creates a new RecommendHandler instance.
func NewRecommendHandler(service services.RecommendService) *RecommendHandler {
	return &RecommendHandler{
		service: service,
	}
}

// RecommendRequest represents the body of both recommendation endpoints.
type RecommendRequest struct {
	Age            int      `json:"age" binding:"required,min=1,max=200"`
	Gender         string   `json:"gender" binding:"required,oneof=male female"`
	Address        string   `json:"address" binding:"required,max=500"`
	Transportation []string `json:"transportation" binding:"required,dive,required"`
}

// Area handles POST /api/v1/recommend/area.
func (h *RecommendHandler) Area(c *gin.Context) {
	h.recommend(c, "area", h.service.RecommendArea)
}

// Property handles POST /api/v1/recommend/property.
func (h *RecommendHandler) Property(c *gin.Context) {
	h.recommend(c, "property", h.service.RecommendProperty)
}

func (h *RecommendHandler) recommend(
	c *gin.Context,
	kind string,
	score func(ctx context.Context, req services.RecommendRequest) (json.RawMessage, error),
) {
	log := middleware.GetLogger(c)

	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, apierrors.ErrBadRequest, "Invalid request body", nil)
		return
	}

	if log != nil {
		log.Info("Processing recommendation request", map[string]interface{}{
			"kind":   kind,
			"age":    req.Age,
			"gender": req.Gender,
		})
	}

	result, err := score(c.Request.Context(), services.RecommendRequest{
		Age:            req.Age,
		Gender:         req.Gender,
		Address:        req.Address,
		Transportation: req.Transportation,
	})
	if err != nil {
		if errors.Is(err, services.ErrCoordinateConversion) {
			apierrors.BadRequest(c, apierrors.ErrCoordinateConversionFailed,
				"Could not resolve coordinates for the given address", nil)
			return
		}
		if errors.Is(err, services.ErrRecommendUpstream) {
			apierrors.ServiceUnavailable(c, apierrors.ErrRecommendAPI,
				"Recommendation service is temporarily unavailable", err)
			return
		}
		apierrors.InternalServerError(c, "Failed to compute recommendation", err)
		return
	}

	c.Data(http.StatusOK, "application/json", result)
}

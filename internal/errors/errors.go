package errors

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/nomadlab/seoulbang/internal/middleware"
)

// Error code constants for standardized error responses. Codes are stable and
// machine-readable; clients branch on them, not on messages.
const (
	ErrNotFound                   = "LISTING_NOT_FOUND"
	ErrBadRequest                 = "INVALID_INPUT_VALUE"
	ErrInternalServer             = "INTERNAL_SERVER_ERROR"
	ErrValidation                 = "VALIDATION_ERROR"
	ErrCoordinateConversionFailed = "COORDINATE_CONVERSION_FAILED"
	ErrKakaoAPI                   = "KAKAO_API_ERROR"
	ErrBuildingAPI                = "BUILDING_API_ERROR"
	ErrRecommendAPI               = "RECOMMEND_API_ERROR"
)

// ErrorResponse is the top-level error response structure.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

func respond(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Timestamp: time.Now().UTC(),
			Details:   details,
			RequestID: middleware.GetRequestID(c),
		},
	})
}

// NotFound returns a 404 Not Found error response.
// It logs a warning and sends a JSON response with the error details.
func NotFound(c *gin.Context, message string) {
	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Resource not found", map[string]interface{}{
			"message": message,
			"path":    c.Request.URL.Path,
		})
	}
	respond(c, http.StatusNotFound, ErrNotFound, message, nil)
}

// BadRequest returns a 400 Bad Request error response with an explicit code
// and optional details. It logs a warning before responding.
func BadRequest(c *gin.Context, code, message string, details map[string]interface{}) {
	logFields := map[string]interface{}{
		"message": message,
		"path":    c.Request.URL.Path,
	}
	if details != nil {
		logFields["details"] = details
	}
	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Bad request", logFields)
	}
	respond(c, http.StatusBadRequest, code, message, details)
}

// ServiceUnavailable returns a 503 error response for failures of an
// upstream dependency (geocode, registry, or recommendation provider).
// The upstream error is logged but never exposed to the client.
func ServiceUnavailable(c *gin.Context, code, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("Upstream dependency failure", err, map[string]interface{}{
			"message": message,
			"path":    c.Request.URL.Path,
		})
	}
	respond(c, http.StatusServiceUnavailable, code, message, nil)
}

// InternalServerError returns a 500 Internal Server Error response.
// It logs the error with full context and sends a generic error message to the client.
// The actual error details are not exposed to the client for security reasons.
func InternalServerError(c *gin.Context, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error("Internal server error", err, map[string]interface{}{
			"message": message,
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	}
	respond(c, http.StatusInternalServerError, ErrInternalServer, message, nil)
}

// ValidationError returns a 400 Bad Request error response with field-specific validation errors.
// It parses the validation errors from the validator library and formats them for the client.
func ValidationError(c *gin.Context, validationErrors validator.ValidationErrors) {
	// Convert validation errors to a map of field -> error message
	details := make(map[string]interface{})
	for _, err := range validationErrors {
		details[err.Field()] = formatValidationError(err)
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Validation error", map[string]interface{}{
			"path":   c.Request.URL.Path,
			"fields": details,
		})
	}

	respond(c, http.StatusBadRequest, ErrValidation, "Validation failed for one or more fields", details)
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short or small (minimum: " + err.Param() + ")"
	case "max":
		return "Value is too long or large (maximum: " + err.Param() + ")"
	case "len":
		return "Must have length of " + err.Param()
	case "gt":
		return "Must be greater than " + err.Param()
	case "gte":
		return "Must be greater than or equal to " + err.Param()
	case "lt":
		return "Must be less than " + err.Param()
	case "lte":
		return "Must be less than or equal to " + err.Param()
	case "oneof":
		return "Must be one of: " + err.Param()
	case "dive":
		return "One or more entries are invalid"
	default:
		return "Validation failed for tag: " + err.Tag()
	}
}

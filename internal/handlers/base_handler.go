package handlers

import (
	"net/http"
	"strconv"

	"github.com/edupulse/survey-service/internal/services"
	"github.com/edupulse/survey-service/internal/utils"
	"github.com/edupulse/survey-service/internal/validator"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error payload every endpoint returns
type ErrorResponse struct {
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps endpoint results that carry no domain payload
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler provides shared request plumbing for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming request with the request-scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.FromContext(c, h.logger).Info(msg, args...)
}

// parseIDParam parses a numeric path parameter. On failure it writes the
// 400 response itself and returns 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: raw,
		})
		return 0
	}
	return uint(id)
}

// handleServiceError maps service-layer errors onto HTTP status codes.
// Validation failures are 400, policy conflicts 409, missing records
// 404. An inconsistency is a 500 that still tells the caller which
// submission to repair.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	logger := utils.FromContext(c, h.logger)

	switch {
	case services.IsValidationError(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Code:    "validation_error",
			Details: err.Error(),
		})

	case isStructValidationError(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Code:    "validation_error",
			Details: err,
		})

	case services.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: err.Error(),
			Code:    "not_found",
		})

	case services.IsPolicyError(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: err.Error(),
			Code:    "policy_violation",
		})

	case services.IsInconsistencyError(err):
		logger.Error("Request left a submission inconsistent", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: err.Error(),
			Code:    "submission_inconsistent",
		})

	default:
		logger.Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
			Code:    "internal_error",
		})
	}
}

func isStructValidationError(err error) bool {
	if ve, ok := err.(validator.ValidationErrors); ok {
		return ve.HasErrors()
	}
	return false
}

// userID extracts the authenticated caller, writing the 401 itself when
// absent
func (h *BaseHandler) userID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return "", false
	}
	return userID.(string), true
}

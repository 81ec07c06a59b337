package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hadracha/guides-portal/internal/dto"
	"github.com/hadracha/guides-portal/internal/middleware"
	"github.com/hadracha/guides-portal/internal/service"
	"github.com/hadracha/guides-portal/pkg/apperror"
	"github.com/hadracha/guides-portal/pkg/logger"
	"github.com/hadracha/guides-portal/pkg/response"
	"github.com/hadracha/guides-portal/pkg/validator"
)

type InteractionHandler struct {
	service service.InteractionService
	log     *logger.Logger
}

func NewInteractionHandler(service service.InteractionService, log *logger.Logger) *InteractionHandler {
	return &InteractionHandler{service: service, log: log}
}

// ToggleLike returns a handler bound to one target type (material or main
// topic), so the same logic serves both route families.
func (h *InteractionHandler) ToggleLike(targetType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		acting, ok := middleware.GetActingUser(c)
		if !ok {
			response.Error(c, h.log, apperror.ErrUnauthorized)
			return
		}

		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		result, err := h.service.ToggleLike(c.Request.Context(), acting, targetType, id)
		if err != nil {
			response.Error(c, h.log, err)
			return
		}
		response.Data(c, http.StatusOK, result)
	}
}

func (h *InteractionHandler) AddComment(targetType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		acting, ok := middleware.GetActingUser(c)
		if !ok {
			response.Error(c, h.log, apperror.ErrUnauthorized)
			return
		}

		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req dto.CreateCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
			return
		}

		comment, err := h.service.AddComment(c.Request.Context(), acting, targetType, id, req.Body)
		if err != nil {
			response.Error(c, h.log, err)
			return
		}
		response.Data(c, http.StatusCreated, comment)
	}
}

func (h *InteractionHandler) GetComments(targetType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		comments, err := h.service.GetComments(c.Request.Context(), targetType, id)
		if err != nil {
			response.Error(c, h.log, err)
			return
		}
		response.Data(c, http.StatusOK, comments)
	}
}

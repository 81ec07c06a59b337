package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hadracha/guides-portal/internal/dto"
	"github.com/hadracha/guides-portal/internal/middleware"
	"github.com/hadracha/guides-portal/internal/service"
	"github.com/hadracha/guides-portal/pkg/apperror"
	"github.com/hadracha/guides-portal/pkg/logger"
	"github.com/hadracha/guides-portal/pkg/response"
	"github.com/hadracha/guides-portal/pkg/validator"
)

type TopicHandler struct {
	service service.TopicService
	log     *logger.Logger
}

func NewTopicHandler(service service.TopicService, log *logger.Logger) *TopicHandler {
	return &TopicHandler{service: service, log: log}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "מזהה לא תקין"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *TopicHandler) CreateMainTopic(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	var req dto.CreateMainTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	topic, err := h.service.CreateMainTopic(c.Request.Context(), acting, req.Name)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Data(c, http.StatusCreated, topic)
}

func (h *TopicHandler) CreateSubTopic(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	mainTopicID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CreateSubTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	topic, err := h.service.CreateSubTopic(c.Request.Context(), acting, mainTopicID, req.Name)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Data(c, http.StatusCreated, topic)
}

func (h *TopicHandler) ListMainTopics(c *gin.Context) {
	topics, err := h.service.ListMainTopics(c.Request.Context())
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Data(c, http.StatusOK, topics)
}

func (h *TopicHandler) ListSubTopics(c *gin.Context) {
	mainTopicID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	topics, err := h.service.ListSubTopics(c.Request.Context(), mainTopicID)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Data(c, http.StatusOK, topics)
}

func (h *TopicHandler) DeleteMainTopic(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteMainTopic(c.Request.Context(), acting, id); err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Message(c, http.StatusOK, "הנושא נמחק בהצלחה")
}

func (h *TopicHandler) DeleteSubTopic(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteSubTopic(c.Request.Context(), acting, id); err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Message(c, http.StatusOK, "תת הנושא נמחק בהצלחה")
}

func (h *TopicHandler) GetPendingTopics(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	pendings, err := h.service.GetPendingTopics(c.Request.Context(), acting)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Data(c, http.StatusOK, pendings)
}

func (h *TopicHandler) ApprovePendingTopic(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.ApprovePendingTopic(c.Request.Context(), acting, id); err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Message(c, http.StatusOK, "הנושא אושר בהצלחה")
}

func (h *TopicHandler) RejectPendingTopic(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RejectTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.RejectPendingTopic(c.Request.Context(), acting, id, req.Reason); err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Message(c, http.StatusOK, "הנושא נדחה")
}

func (h *TopicHandler) ReassignTopic(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ReassignTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.ReassignTopic(c.Request.Context(), acting, id, req.TargetTopicID, req.IsMainTopic); err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Message(c, http.StatusOK, "התוכן שויך לנושא הקיים")
}

func (h *TopicHandler) BulkApprove(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	var req dto.BulkTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	result, err := h.service.BulkApprove(c.Request.Context(), acting, req.IDs)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Data(c, http.StatusOK, result)
}

func (h *TopicHandler) BulkReject(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	var req struct {
		dto.BulkTopicRequest
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	result, err := h.service.BulkReject(c.Request.Context(), acting, req.IDs, req.Reason)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Data(c, http.StatusOK, result)
}

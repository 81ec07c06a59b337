package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hadracha/guides-portal/internal/middleware"
	"github.com/hadracha/guides-portal/internal/service"
	"github.com/hadracha/guides-portal/pkg/apperror"
	"github.com/hadracha/guides-portal/pkg/logger"
	"github.com/hadracha/guides-portal/pkg/response"
)

type ApprovalHandler struct {
	service service.ApprovalService
	log     *logger.Logger
}

func NewApprovalHandler(service service.ApprovalService, log *logger.Logger) *ApprovalHandler {
	return &ApprovalHandler{service: service, log: log}
}

func (h *ApprovalHandler) GetCounts(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	counts, err := h.service.GetApprovalCounts(c.Request.Context(), acting)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Data(c, http.StatusOK, counts)
}

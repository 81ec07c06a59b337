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

type UserHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{service: service, log: log}
}

func (h *UserHandler) ListAll(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	users, err := h.service.ListAll(c.Request.Context(), acting)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Data(c, http.StatusOK, users)
}

func (h *UserHandler) ListPendingActivation(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	users, err := h.service.ListPendingActivation(c.Request.Context(), acting)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Data(c, http.StatusOK, users)
}

func (h *UserHandler) Activate(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Activate(c.Request.Context(), acting, id); err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Message(c, http.StatusOK, "המשתמש אושר בהצלחה")
}

func (h *UserHandler) Deactivate(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), acting, id); err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Message(c, http.StatusOK, "המשתמש הושבת")
}

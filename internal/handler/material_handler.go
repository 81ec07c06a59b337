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

type MaterialHandler struct {
	service service.MaterialService
	log     *logger.Logger
}

func NewMaterialHandler(service service.MaterialService, log *logger.Logger) *MaterialHandler {
	return &MaterialHandler{service: service, log: log}
}

func (h *MaterialHandler) Upload(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	var req dto.UploadMaterialRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "יש לצרף קובץ"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Error(c, h.log, apperror.ErrInternal)
		return
	}
	defer f.Close()

	file := &dto.MaterialFile{
		Reader:      f,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
	}

	material, err := h.service.Upload(c.Request.Context(), acting, req, file)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Data(c, http.StatusCreated, material)
}

func (h *MaterialHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	material, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Data(c, http.StatusOK, material)
}

func (h *MaterialHandler) List(c *gin.Context) {
	var filter dto.MaterialFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	materials, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Data(c, http.StatusOK, materials)
}

func (h *MaterialHandler) ListForApproval(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	materials, err := h.service.ListForApproval(c.Request.Context(), acting)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Data(c, http.StatusOK, materials)
}

func (h *MaterialHandler) Approve(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Approve(c.Request.Context(), acting, id); err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Message(c, http.StatusOK, "התוכן אושר בהצלחה")
}

func (h *MaterialHandler) Reject(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RejectMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.Reject(c.Request.Context(), acting, id, req.Reason); err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Message(c, http.StatusOK, "התוכן נדחה")
}

func (h *MaterialHandler) Delete(c *gin.Context) {
	acting, ok := middleware.GetActingUser(c)
	if !ok {
		response.Error(c, h.log, apperror.ErrUnauthorized)
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), acting, id); err != nil {
		response.Error(c, h.log, err)
		return
	}
	response.Message(c, http.StatusOK, "התוכן נמחק בהצלחה")
}

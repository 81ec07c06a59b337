package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hadracha/guides-portal/internal/dto"
	"github.com/hadracha/guides-portal/internal/service"
	"github.com/hadracha/guides-portal/pkg/logger"
	"github.com/hadracha/guides-portal/pkg/response"
	"github.com/hadracha/guides-portal/pkg/validator"
)

type AuthHandler struct {
	service service.AuthService
	log     *logger.Logger
}

func NewAuthHandler(service service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{service: service, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Data(c, http.StatusCreated, user)
}

func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req dto.RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.service.RequestOTP(c.Request.Context(), req.Phone); err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Message(c, http.StatusOK, "קוד אימות נשלח בהצלחה")
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	auth, err := h.service.VerifyOTP(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Data(c, http.StatusOK, auth)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	auth, err := h.service.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		response.Error(c, h.log, err)
		return
	}

	response.Data(c, http.StatusOK, auth)
}

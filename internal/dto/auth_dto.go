package dto

import (
	"github.com/hadracha/guides-portal/internal/model"
)

type RegisterRequest struct {
	Phone    string  `json:"phone" binding:"required,min=9,max=15"`
	FullName string  `json:"full_name" binding:"required,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

type RequestOTPRequest struct {
	Phone string `json:"phone" binding:"required,min=9,max=15"`
}

type VerifyOTPRequest struct {
	Phone string `json:"phone" binding:"required,min=9,max=15"`
	Code  string `json:"code" binding:"required,len=6"`
}

type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        *model.User `json:"user"`
}

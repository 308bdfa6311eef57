package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/projectnuraya/tilawah-tracker/internal/dto"
	"github.com/projectnuraya/tilawah-tracker/internal/service"
	"github.com/projectnuraya/tilawah-tracker/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register 协调员注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, result)
}

// Login 协调员登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Refresh 使用 refresh token 换取新的 Token 对
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Logout 登出，请求体可选
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := MustGetClaims(c)
	if !ok {
		return
	}

	var req dto.LogoutRequest
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &req) {
			return
		}
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims, req.RefreshToken); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// Me 当前协调员信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	coordinatorID, ok := MustGetCoordinatorID(c)
	if !ok {
		return
	}

	result, err := h.authSvc.Me(c.Request.Context(), coordinatorID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

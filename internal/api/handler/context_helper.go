package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/projectnuraya/tilawah-tracker/internal/service"
	"github.com/projectnuraya/tilawah-tracker/pkg/jwt"
	"github.com/projectnuraya/tilawah-tracker/pkg/response"
)

// 与 middleware.JWTAuth 写入的键保持一致
const (
	ctxCoordinatorID = "coordinator_id"
	ctxClaims        = "claims"
)

// MustGetCoordinatorID 从 Gin 上下文中安全提取 coordinator_id。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetCoordinatorID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxCoordinatorID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetClaims 提取当前 access token 的声明
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(ctxClaims)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// authorizeGroup 校验当前协调员是否管理 groupID，失败时已写入响应
func authorizeGroup(c *gin.Context, groups service.GroupService, groupID string) (string, bool) {
	callerID, ok := MustGetCoordinatorID(c)
	if !ok {
		return "", false
	}
	if groupID == "" {
		response.BadRequest(c, 10001, "组ID不能为空")
		return "", false
	}
	if err := groups.CheckAccess(c.Request.Context(), callerID, groupID); err != nil {
		handleError(c, err)
		return "", false
	}
	return callerID, true
}

// authorizeVia 先通过 resolve 找到资源所属组，再做组权限校验
func authorizeVia(c *gin.Context, groups service.GroupService, resolve func(context.Context, string) (string, error), id string) (string, bool) {
	if id == "" {
		response.BadRequest(c, 10001, "ID不能为空")
		return "", false
	}
	groupID, err := resolve(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return "", false
	}
	return authorizeGroup(c, groups, groupID)
}

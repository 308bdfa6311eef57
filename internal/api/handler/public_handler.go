package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projectnuraya/tilawah-tracker/internal/service"
	"github.com/projectnuraya/tilawah-tracker/pkg/response"
)

// PublicHandler 免登录的只读视图，凭公开令牌访问
type PublicHandler struct {
	publicSvc service.PublicService
}

// NewPublicHandler 创建 PublicHandler
func NewPublicHandler(publicSvc service.PublicService) *PublicHandler {
	return &PublicHandler{publicSvc: publicSvc}
}

// Overview 当前周期与历史
// GET /api/v1/public/:token
func (h *PublicHandler) Overview(c *gin.Context) {
	result, err := h.publicSvc.Overview(c.Request.Context(), c.Param("token"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Period 周期详情
// GET /api/v1/public/:token/periods/:periodId
func (h *PublicHandler) Period(c *gin.Context) {
	result, err := h.publicSvc.Period(c.Request.Context(), c.Param("token"), c.Param("periodId"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Calendar iCalendar 订阅
// GET /api/v1/public/:token/calendar.ics
func (h *PublicHandler) Calendar(c *gin.Context) {
	raw, err := h.publicSvc.Calendar(c.Request.Context(), c.Param("token"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="tilawah.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", raw)
}
